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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/fieldstock-api/docs"
	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain/access"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/archive"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/kafka"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/observability"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/fieldstock-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/fieldstock-api/internal/interfaces/http"
	"github.com/jhoicas/fieldstock-api/pkg/config"
	"github.com/jhoicas/fieldstock-api/pkg/logger"
	"github.com/jhoicas/fieldstock-api/pkg/tabular"
)

// @title						FieldStock API
// @version					1.0
// @description				Ledger de stock por tienda: ventas, envíos y carga masiva de envíos.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Bearer <token JWT>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	deps := inventory.Deps{
		Authorizer: access.NewRolePolicy(),
		Retry: inventory.RetryPolicy{
			MaxAttempts: cfg.Ledger.RetryMaxAttempts,
			BaseDelay:   cfg.Ledger.RetryBaseDelay,
		},
		Log: log,
	}

	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			if err := loadSeed(store, cfg.Storage.SeedFile, log); err != nil {
				log.Fatal().Err(err).Str("file", cfg.Storage.SeedFile).Msg("cargar seed en memoria")
			}
		}
		deps = memory.Wire(store, deps)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			applied, err := postgres.EnsureSchema(ctx, pool)
			if err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Strs("files", applied).Msg("esquema aplicado")
		}
		deps = postgres.Wire(pool, deps)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador Kafka")
			}
		}()
		deps.Publisher = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos del ledger activa")
	}

	var uploads inventory.UploadArchive
	if cfg.Archive.Bucket != "" {
		client, err := archive.NewS3Client(ctx, archive.S3Config{
			Bucket:   cfg.Archive.Bucket,
			Region:   cfg.Archive.Region,
			Endpoint: cfg.Archive.Endpoint,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		uploads = archive.NewS3Archive(client, cfg.Archive.Bucket)
	}

	// nil interfaz: el limitador usa su almacenamiento en memoria.
	var limiterStorage fiber.Storage
	if cfg.Redis.Addr != "" {
		storage := redisstore.New(redisstore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), "fieldstock:limiter:")
		if err := storage.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer storage.Close()
		limiterStorage = storage
	}

	saleUC := inventory.NewSaleUseCase(deps)
	shipmentUC := inventory.NewShipmentUseCase(deps, cfg.Ledger.BlockNegativeStock)
	stockUC := inventory.NewStockUseCase(deps)
	bulkUC := inventory.NewBulkShipmentUseCase(shipmentUC, tabular.NewDecoder(), uploads, inventory.BulkOptions{
		MaxFileBytes:           cfg.Bulk.MaxFileBytes,
		Workers:                cfg.Bulk.Workers,
		RowsPerSecond:          cfg.Bulk.RowsPerSecond,
		ValidateAgainstCatalog: cfg.Bulk.ValidateAgainstCatalog,
		ArchivePrefix:          cfg.Archive.Prefix,
		Log:                    log,
	})

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:      cfg.App.Name,
		BodyLimit: cfg.HTTP.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "FieldStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SaleUC:           saleUC,
		ShipmentUC:       shipmentUC,
		BulkShipmentUC:   bulkUC,
		StockUC:          stockUC,
		JWTSecret:        cfg.JWT.Secret,
		MaxUploadBytes:   cfg.Bulk.MaxFileBytes,
		UploadsPerMinute: cfg.Bulk.UploadsPerMinute,
		LimiterStorage:   limiterStorage,
		Log:              log,
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}

func loadSeed(store *memory.Store, path string, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	assignments, brands, err := memory.LoadSeed(store, f)
	if err != nil {
		return err
	}
	log.Info().Int("store_assignments", assignments).Int("brands", brands).Msg("seed en memoria cargado")
	return nil
}
