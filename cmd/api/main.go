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

	"github.com/jhoicas/Tienda-api/internal/application/auth"
	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/mongodb"
	httpRouter "github.com/jhoicas/Tienda-api/internal/interfaces/http"
	"github.com/jhoicas/Tienda-api/pkg/config"
	"github.com/jhoicas/Tienda-api/pkg/logger"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Almacén documental: MongoDB cuando hay URI; en memoria para desarrollo.
	var st store.Store
	if cfg.Mongo.URI != "" {
		db, closeDB, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MongoDB")
		}
		defer closeDB()
		st = mongodb.NewStore(db, log)
	} else {
		log.Warn().Msg("MONGO_URI vacío: usando almacén en memoria (solo desarrollo)")
		st = memstore.New()
	}

	categoryCache := categories.NewCache(st, log)
	categoryCache.Start(ctx)

	catalogSvc := catalog.NewService(st, categoryCache, log, catalog.Config{
		PageSize:        cfg.Catalog.PageSize,
		BestSellerLimit: cfg.Catalog.BestSellerLimit,
	})
	catalogSvc.Start(ctx)

	productUC := usecase.NewProductUseCase(st, categoryCache)
	authUC := auth.NewAuthUseCase(cfg.Auth)

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
		Title:    "Tienda API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		AuthUC:        authUC,
		CatalogSvc:    catalogSvc,
		CategoryCache: categoryCache,
		Store:         st,
		PageSize:      cfg.Catalog.PageSize,
		JWTSecret:     cfg.Auth.JWTSecret,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	cancel()
	log.Info().Msg("aplicación detenida")
}
