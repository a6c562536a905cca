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
	"github.com/tu-usuario/stockbook/internal/application/analytics"
	"github.com/tu-usuario/stockbook/internal/application/counts"
	"github.com/tu-usuario/stockbook/internal/application/ledger"
	"github.com/tu-usuario/stockbook/internal/application/orders"
	"github.com/tu-usuario/stockbook/internal/application/products"
	"github.com/tu-usuario/stockbook/internal/application/projection"
	"github.com/tu-usuario/stockbook/internal/application/tenant"
	"github.com/tu-usuario/stockbook/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/stockbook/internal/interfaces/http"
	"github.com/tu-usuario/stockbook/pkg/config"
	"github.com/tu-usuario/stockbook/pkg/logger"
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
	adminPool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer adminPool.Close()

	factory := postgres.NewTenantFactory(adminPool, cfg.DB, cfg.Tenant, log)
	registry := tenant.NewRegistry(factory, log)
	defer registry.Close()

	productUC := products.NewUseCase(registry)
	ledgerUC := ledger.NewUseCase(registry)
	seriesUC := projection.NewUseCase(registry, log)
	analyticsUC := analytics.NewUseCase(registry)
	orderUC := orders.NewUseCase(registry)
	countUC := counts.NewUseCase(registry)

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
		Title:    "Stockbook API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		LedgerUC:    ledgerUC,
		SeriesUC:    seriesUC,
		AnalyticsUC: analyticsUC,
		OrderUC:     orderUC,
		CountUC:     countUC,
		JWTSecret:   cfg.JWT.Secret,
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
