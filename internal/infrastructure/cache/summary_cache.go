// Package cache implementa la caché del resumen de existencias sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

const (
	keyPrefix     = "stock_ledger:summary:"
	generationKey = "stock_ledger:summary_gen"
	allWarehouses = "all"
	scanBatchSize = 100
	opTimeout     = 2 * time.Second
)

// noGeneration la generación no se pudo leer; Set no guarda nada.
const noGeneration int64 = -1

var _ inventory.SummaryCache = (*RedisSummaryCache)(nil)

// RedisSummaryCache guarda el resumen por bodega con TTL, bajo una clave que incluye la generación vigente.
// Invalidate incrementa la generación (INCR) y borra las claves anteriores. Los errores de Redis se registran
// y se tratan como fallo de caché: el resumen se vuelve a calcular desde la base.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisClient abre el cliente desde una URL redis:// y verifica la conexión.
func NewRedisClient(ctx context.Context, url string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if db != 0 {
		opts.DB = db
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewRedisSummaryCache construye la caché sobre un cliente existente; el llamador conserva el cliente.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "summary_cache").Logger(),
	}
}

func cacheKey(gen int64, warehouseID string) string {
	if warehouseID == "" {
		warehouseID = allWarehouses
	}
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + warehouseID
}

// generation lee la generación vigente; la ausencia de la clave equivale a 0.
func (c *RedisSummaryCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Get devuelve el resumen guardado para la generación vigente y esa generación; ok es false ante ausencia o error.
func (c *RedisSummaryCache) Get(ctx context.Context, warehouseID string) ([]dto.BalanceSummaryDTO, int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("leer generación de la caché")
		return nil, noGeneration, false
	}
	key := cacheKey(gen, warehouseID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, gen, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("leer resumen de la caché")
		return nil, gen, false
	}
	var rows []dto.BalanceSummaryDTO
	if err := json.Unmarshal(data, &rows); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("entrada de caché corrupta; se elimina")
		_ = c.client.Del(ctx, key).Err()
		return nil, gen, false
	}
	return rows, gen, true
}

// Set guarda el resumen bajo gen con el TTL configurado. Si gen ya no es la vigente la entrada nunca se lee
// y expira sola.
func (c *RedisSummaryCache) Set(ctx context.Context, gen int64, warehouseID string, rows []dto.BalanceSummaryDTO) {
	if gen == noGeneration {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := json.Marshal(rows)
	if err != nil {
		c.log.Warn().Err(err).Msg("serializar resumen")
		return
	}
	if err := c.client.Set(ctx, cacheKey(gen, warehouseID), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("warehouse_id", warehouseID).Msg("guardar resumen en la caché")
	}
}

// Invalidate avanza la generación (cualquier entrada o reversión cambia los totales de todas las vistas)
// y borra las entradas existentes para liberar memoria.
func (c *RedisSummaryCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// sin INCR se borra todo, incluida la generación vigente
	current := ""
	if gen, err := c.client.Incr(ctx, generationKey).Result(); err != nil {
		c.log.Warn().Err(err).Msg("invalidar resumen: incr")
	} else {
		current = keyPrefix + strconv.FormatInt(gen, 10) + ":"
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			c.log.Warn().Err(err).Msg("invalidar resumen: scan")
			return
		}
		stale := keys[:0]
		for _, k := range keys {
			if current == "" || !strings.HasPrefix(k, current) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			if err := c.client.Del(ctx, stale...).Err(); err != nil {
				c.log.Warn().Err(err).Msg("invalidar resumen: del")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
