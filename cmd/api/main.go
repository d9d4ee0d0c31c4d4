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
	"github.com/jhoicas/Seriales-api/internal/application/inbound"
	"github.com/jhoicas/Seriales-api/internal/application/outbound"
	"github.com/jhoicas/Seriales-api/internal/application/parser"
	"github.com/jhoicas/Seriales-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Seriales-api/internal/interfaces/http"
	"github.com/jhoicas/Seriales-api/pkg/config"
	"github.com/jhoicas/Seriales-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	deviceRepo := postgres.NewDeviceRepository(pool)
	boxRepo := postgres.NewBoxRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	batchRepo := postgres.NewImportBatchRepository(pool)
	movRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registry := parser.NewRegistry(vendorProfiles(cfg.Inbound))
	log.Info().Strs("vendors", registry.Vendors()).Msg("proveedores registrados")

	reconciler := inbound.NewReconciler(txRunner, log)
	engine := outbound.NewEngine(txRunner, deviceRepo, boxRepo, itemRepo, log)

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
		Title:    "Seriales API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Registry:   registry,
		Reconciler: reconciler,
		Outbound:   engine,
		DeviceRepo: deviceRepo,
		BoxRepo:    boxRepo,
		ItemRepo:   itemRepo,
		BatchRepo:  batchRepo,
		MovRepo:    movRepo,
		JWTSecret:  cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}

// vendorProfiles traduce los perfiles de configuración al registro del parser.
func vendorProfiles(in config.InboundConfig) []parser.Profile {
	out := make([]parser.Profile, 0, len(in.Vendors))
	for _, v := range in.Vendors {
		out = append(out, parser.Profile{
			Vendor:        v.Vendor,
			Layout:        v.Layout,
			StrictSerials: v.StrictSerials,
			ForcedDevice:  v.ForcedDevice,
			CartonWidth:   v.CartonWidth,
		})
	}
	return out
}
