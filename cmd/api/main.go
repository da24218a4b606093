package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/request"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	infracache "github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/migration"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Bodega sembrada en modo memoria para poder registrar entradas sin datos maestros.
const memoryWarehouseID = "00000000-0000-0000-0000-000000000001"

// ledger agrupa los adaptadores del almacenamiento elegido.
type ledger struct {
	txRunner      inventory.TxRunner
	balanceRepo   repository.BalanceRepository
	movementRepo  repository.MovementRepository
	stockPutRepo  repository.StockPutRepository
	warehouseRepo repository.WarehouseRepository
	categoryRepo  repository.CategoryRepository
	requestRepo   repository.RequestRepository
	analyticsRepo repository.AnalyticsRepository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Name, log.Component("telemetry"))
	if err != nil {
		log.Fatal().Err(err).Msg("telemetría")
	}

	store, err := openLedger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento del libro")
	}
	defer store.close()

	var summaryCache inventory.SummaryCache = inventory.NoopSummaryCache{}
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = infracache.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.DB)
		if err != nil {
			// Sin Redis el servicio sigue funcionando; el resumen se calcula siempre desde la base.
			log.Warn().Err(err).Msg("caché Redis no disponible")
		} else {
			summaryCache = infracache.NewRedisSummaryCache(redisClient, cfg.Redis.TTL, log.Zerolog())
		}
	}

	inboundUC := inventory.NewInboundUseCase(store.txRunner, store.warehouseRepo, log.Zerolog(),
		inventory.WithSummaryCache(summaryCache))
	queryUC := inventory.NewQueryUseCase(store.balanceRepo, store.movementRepo, store.stockPutRepo,
		store.warehouseRepo, store.categoryRepo, summaryCache, log.Zerolog())
	receiptUC := inventory.NewReceiptUseCase(queryUC, infrapdf.NewMarotoReceiptGenerator())
	requestUC := request.NewUseCase(store.requestRepo, log.Zerolog())
	dashboardUC := appanalytics.NewDashboardUseCase(store.analyticsRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inbound:   inboundUC,
		Query:     queryUC,
		Receipt:   receiptUC,
		Requests:  requestUC,
		Dashboard: dashboardUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar Redis")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

// openLedger abre PostgreSQL (aplicando migraciones si MIGRATIONS_AUTO) o el store en memoria.
func openLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ledger, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		store := memory.New()
		store.AddWarehouse(&entity.Warehouse{ID: memoryWarehouseID, Name: "Bodega principal", CreatedAt: time.Now().UTC()})
		log.Warn().Str("warehouse_id", memoryWarehouseID).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &ledger{
			txRunner:      store,
			balanceRepo:   store.Balances(),
			movementRepo:  store.Movements(),
			stockPutRepo:  store.StockPuts(),
			warehouseRepo: store.Warehouses(),
			categoryRepo:  store.Categories(),
			requestRepo:   store.Requests(),
			analyticsRepo: store.Analytics(),
			close:         func() {},
		}, nil
	}

	if cfg.App.MigrationsAuto {
		if err := migrateUp(cfg.DB.ConnectionString(), log); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &ledger{
		txRunner:      postgres.NewTxRunner(pool),
		balanceRepo:   postgres.NewBalanceRepository(pool),
		movementRepo:  postgres.NewMovementRepository(pool),
		stockPutRepo:  postgres.NewStockPutRepository(pool),
		warehouseRepo: postgres.NewWarehouseRepository(pool),
		categoryRepo:  postgres.NewCategoryRepository(pool),
		requestRepo:   postgres.NewRequestRepository(pool),
		analyticsRepo: postgres.NewAnalyticsRepository(pool),
		close:         pool.Close,
	}, nil
}

func migrateUp(databaseURL string, log *logger.Logger) error {
	m, err := migration.New(databaseURL, log.Zerolog())
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar migrador")
		}
	}()
	return m.Up()
}
