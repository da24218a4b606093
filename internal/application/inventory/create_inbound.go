package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DefaultMaxAttempts intentos de una unidad de trabajo ante conflictos de concurrencia.
const DefaultMaxAttempts = 3

var tracer = otel.Tracer("github.com/jhoicas/stock-ledger/internal/application/inventory")

// InboundUseCase registra y revierte entradas de inventario de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) sobre los saldos y reintento acotado ante conflictos.
type InboundUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	cache         SummaryCache
	log           zerolog.Logger

	now         func() time.Time
	maxAttempts int

	numMu   sync.Mutex
	lastNum int64
}

// Option configura el caso de uso.
type Option func(*InboundUseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *InboundUseCase) { uc.now = now }
}

// WithMaxAttempts fija el número de intentos ante domain.ErrConflict.
func WithMaxAttempts(n int) Option {
	return func(uc *InboundUseCase) {
		if n > 0 {
			uc.maxAttempts = n
		}
	}
}

// WithSummaryCache conecta la caché del resumen de existencias para invalidarla tras cada escritura.
func WithSummaryCache(c SummaryCache) Option {
	return func(uc *InboundUseCase) {
		if c != nil {
			uc.cache = c
		}
	}
}

// NewInboundUseCase construye el caso de uso.
func NewInboundUseCase(txRunner TxRunner, warehouseRepo repository.WarehouseRepository, log zerolog.Logger, opts ...Option) *InboundUseCase {
	uc := &InboundUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		cache:         NoopSummaryCache{},
		log:           log.With().Str("component", "inbound").Logger(),
		now:           time.Now,
		maxAttempts:   DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// InboundItemInput línea de una entrada. CategoryID y Spec son opcionales.
type InboundItemInput struct {
	Name       string
	CategoryID string
	Spec       string
	Quantity   int64
	Unit       string
	UnitCost   decimal.Decimal
}

// CreateInboundInput entrada para registrar una transacción de entrada.
type CreateInboundInput struct {
	WarehouseID string
	Custodian   string
	PutUser     string
	Content     string
	Items       []InboundItemInput
}

// Validate verifica la entrada antes de cualquier escritura.
func (in CreateInboundInput) Validate() error {
	if in.WarehouseID == "" {
		return fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: se requiere al menos un artículo", domain.ErrInvalidInput)
	}
	total := decimal.Zero
	for i, it := range in.Items {
		if it.Name == "" {
			return fmt.Errorf("%w: artículo %d: nombre requerido", domain.ErrInvalidInput, i+1)
		}
		if err := inventory.ValidateLine(it.Quantity, it.UnitCost); err != nil {
			return fmt.Errorf("artículo %d: %w", i+1, err)
		}
		total = total.Add(inventory.LineTotal(it.Quantity, it.UnitCost))
	}
	if total.GreaterThan(inventory.MaxAmount) {
		return fmt.Errorf("%w: el total de la entrada supera %s", domain.ErrInvalidInput, inventory.MaxAmount.StringFixed(inventory.CostPlaces))
	}
	return nil
}

// CreateInbound registra una entrada: cabecera, un movimiento y un enlace por artículo, y actualiza
// el saldo de cada identidad con el costo promedio ponderado. Todo en una sola transacción;
// ante domain.ErrConflict se repite la unidad de trabajo completa.
func (uc *InboundUseCase) CreateInbound(ctx context.Context, input CreateInboundInput) (*entity.StockPut, error) {
	ctx, span := tracer.Start(ctx, "inventory.CreateInbound", trace.WithAttributes(
		attribute.String("warehouse.id", input.WarehouseID),
		attribute.Int("items", len(input.Items)),
	))
	defer span.End()

	put, err := uc.createInbound(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("stock_put.num", put.Num))
	return put, nil
}

func (uc *InboundUseCase) createInbound(ctx context.Context, input CreateInboundInput) (*entity.StockPut, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, input.WarehouseID)
	}

	total := decimal.Zero
	for _, it := range input.Items {
		total = total.Add(inventory.LineTotal(it.Quantity, it.UnitCost))
	}

	var put *entity.StockPut
	err = uc.withRetry(ctx, "create_inbound", func() error {
		now := uc.now().UTC()
		put = &entity.StockPut{
			ID:          uuid.New().String(),
			Num:         uc.nextNum(now),
			TotalPrice:  total,
			Custodian:   input.Custodian,
			PutUser:     input.PutUser,
			Content:     input.Content,
			WarehouseID: input.WarehouseID,
			CreatedAt:   now,
		}
		return uc.txRunner.Run(ctx, func(
			balanceRepo repository.BalanceRepository,
			movRepo repository.MovementRepository,
			putRepo repository.StockPutRepository,
			linkRepo repository.GoodsBelongRepository,
		) error {
			if err := putRepo.Create(ctx, put); err != nil {
				return err
			}
			for _, it := range input.Items {
				if err := uc.applyItem(ctx, balanceRepo, movRepo, linkRepo, put, it, now); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx)
	uc.log.Info().
		Str("num", put.Num).
		Str("warehouse_id", put.WarehouseID).
		Int("items", len(input.Items)).
		Str("total", put.TotalPrice.StringFixed(2)).
		Msg("entrada registrada")
	return put, nil
}

// applyItem: guarda el movimiento, bloquea (o crea) el saldo, aplica el costo promedio y guarda el enlace.
func (uc *InboundUseCase) applyItem(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	movRepo repository.MovementRepository,
	linkRepo repository.GoodsBelongRepository,
	put *entity.StockPut,
	it InboundItemInput,
	now time.Time,
) error {
	mov := &entity.Movement{
		ID:          uuid.New().String(),
		Kind:        entity.KindInbound,
		Name:        it.Name,
		CategoryID:  it.CategoryID,
		Spec:        it.Spec,
		Quantity:    it.Quantity,
		UnitCost:    it.UnitCost,
		Unit:        it.Unit,
		WarehouseID: put.WarehouseID,
		CreatedAt:   now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return err
	}

	balance, err := lockOrCreateBalance(ctx, balanceRepo, mov.Key(), it.Unit, now)
	if err != nil {
		return err
	}
	newQty, newCost, err := inventory.ApplyMovement(balance.Quantity, balance.UnitCost, it.Quantity, it.UnitCost)
	if err != nil {
		return err
	}
	balance.Quantity = newQty
	balance.UnitCost = newCost
	balance.UpdatedAt = now
	if err := balanceRepo.Update(ctx, balance); err != nil {
		return err
	}

	return linkRepo.Create(ctx, &entity.GoodsBelong{
		ID:         uuid.New().String(),
		MovementID: mov.ID,
		StockPutID: put.ID,
		Quantity:   it.Quantity,
		TotalPrice: inventory.LineTotal(it.Quantity, it.UnitCost),
		CreatedAt:  now,
	})
}

// lockOrCreateBalance busca el saldo por identidad bajo bloqueo; si no existe lo inserta en cero
// (ON CONFLICT DO NOTHING sobre el índice único de identidad) y lo vuelve a leer bloqueado.
func lockOrCreateBalance(ctx context.Context, balanceRepo repository.BalanceRepository, key entity.BalanceKey, unit string, now time.Time) (*entity.Balance, error) {
	balance, err := balanceRepo.FindForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	err = balanceRepo.InsertIfAbsent(ctx, &entity.Balance{
		ID:          uuid.New().String(),
		Name:        key.Name,
		CategoryID:  key.CategoryID,
		Spec:        key.Spec,
		WarehouseID: key.WarehouseID,
		Quantity:    0,
		UnitCost:    decimal.Zero,
		Unit:        unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	balance, err = balanceRepo.FindForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("%w: saldo %q no visible tras crearlo", domain.ErrInvariantViolation, key.Name)
	}
	return balance, nil
}

// withRetry repite fn mientras devuelva domain.ErrConflict, hasta maxAttempts.
// Cancelación del contexto y cualquier otro error se devuelven de inmediato.
func (uc *InboundUseCase) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		uc.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
	}
	return err
}

// nextNum genera PUT-<milisegundos>, estrictamente creciente dentro del proceso.
// La unicidad global la garantiza el índice único de stock_put.num.
func (uc *InboundUseCase) nextNum(now time.Time) string {
	uc.numMu.Lock()
	defer uc.numMu.Unlock()
	ms := now.UnixMilli()
	if ms <= uc.lastNum {
		ms = uc.lastNum + 1
	}
	uc.lastNum = ms
	return fmt.Sprintf("PUT-%d", ms)
}
