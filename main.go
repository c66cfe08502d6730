package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"grosir/internal/config"
	"grosir/internal/database"
	"grosir/internal/repositories"
	"grosir/internal/server"
	"grosir/internal/services"
	"grosir/internal/storage"
	"grosir/pkg/rabbitmq"
	"grosir/pkg/result"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("%v", err)
		}
	}

	// --- RabbitMQ (optional) ---
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient

		go func() {
			log.Println("Starting RabbitMQ consumer for product events...")
			if err := mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set, product events are disabled")
	}

	// --- Image storage ---
	images, err := storage.NewLocalImageStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// --- Repositories and services ---
	userRepo := repositories.NewGORMUserRepository(db)
	wholesalerRepo := repositories.NewGORMWholesalerRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	authService := services.NewAuthService(userRepo, wholesalerRepo, cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(productRepo, wholesalerRepo, images, events)

	// --- HTTP ---
	app := server.New(server.Deps{
		DB:             db,
		Auth:           authService,
		Products:       productService,
		Out:            result.Writer{Strict: cfg.StrictHTTPStatus},
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		EventsEnabled:  mqClient != nil,
		AccessLog:      true,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
