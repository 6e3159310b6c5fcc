package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"stitchery/internal/config"
	"stitchery/internal/database"
	"stitchery/internal/handlers"
	"stitchery/internal/middleware"
	"stitchery/internal/mirror"
	"stitchery/internal/models"
	"stitchery/internal/repositories"
	"stitchery/internal/services"
	"stitchery/internal/storage"
	"stitchery/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApp(cfg, afero.NewOsFs())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// application bundles the HTTP server with the resources it owns.
type application struct {
	fiber    *fiber.App
	db       *gorm.DB
	mq       *rabbitmq.Client
	exporter *mirror.Exporter
}

// newApp opens the stores, wires services and handlers, and registers routes.
// fs backs the upload directory and the JSON mirror.
func newApp(cfg *config.Config, fs afero.Fs) (*application, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	flossRepo := repositories.NewGORMFlossRepository(db)
	patternRepo := repositories.NewGORMPatternRepository(db)

	// The relational store is authoritative; the mirror is only ever
	// re-exported from it.
	exporter := mirror.NewExporter(
		mirror.NewStore(fs, cfg.MirrorPatternsPath, cfg.MirrorFlossPath),
		flossRepo,
		patternRepo,
	)

	app := &application{db: db, exporter: exporter}

	var notifier services.ChangeNotifier = exporter
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		app.mq = mqClient
		notifier = mqClient

		err = mqClient.ConsumeChanges(func(event models.ChangeEvent) error {
			log.Printf("Refreshing mirror after %s by %s", event.Kind, event.UserID)
			return exporter.Export()
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start RabbitMQ consumer: %w", err)
		}
	}

	files, err := newFileStore(cfg, fs)
	if err != nil {
		app.Close()
		return nil, err
	}

	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	flossService := services.NewFlossService(flossRepo, notifier, cfg.DefaultFlossLength)
	patternService := services.NewPatternService(patternRepo, files, cfg.AllowedExtensions, notifier)
	stitchableService := services.NewStitchableService(patternRepo, flossService)

	authHandler := handlers.NewAuthHandler(authService)
	flossHandler := handlers.NewFlossHandler(flossService)
	patternHandler := handlers.NewPatternHandler(patternService)
	stitchableHandler := handlers.NewStitchableHandler(stitchableService)

	app.fiber = fiber.New(fiber.Config{
		BodyLimit: cfg.MaxUploadBytes,
	})
	app.fiber.Use(logger.New())

	app.fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": app.mq != nil,
		})
	})

	apiV1 := app.fiber.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Everything else requires a bearer token
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	flossHandler.RegisterRoutes(protectedRoutes)
	patternHandler.RegisterRoutes(protectedRoutes)
	stitchableHandler.RegisterRoutes(protectedRoutes)

	if err := exporter.Export(); err != nil {
		log.Printf("Initial mirror export failed: %v", err)
	}

	return app, nil
}

func newFileStore(cfg *config.Config, fs afero.Fs) (storage.FileStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		store, err := storage.NewMinioStore(cfg.S3)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewDiskStore(fs, cfg.UploadDir)
	}
}

// Close releases the broker connection and the database pool.
func (a *application) Close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
