package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/farisanuar/teg-site-survey/internal/api/http"
	"github.com/farisanuar/teg-site-survey/internal/config"
	"github.com/farisanuar/teg-site-survey/internal/fetch"
	"github.com/farisanuar/teg-site-survey/internal/gee"
	"github.com/farisanuar/teg-site-survey/internal/maps"
	"github.com/farisanuar/teg-site-survey/internal/scheduler"
	"github.com/farisanuar/teg-site-survey/internal/store"
	"github.com/farisanuar/teg-site-survey/internal/survey"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Image stores with configured retention.
	outputStore, err := store.NewImageStore(cfg.OutputDir, cfg.StoreMaxFiles, cfg.StoreMaxAge)
	if err != nil {
		log.Fatalf("failed to open output store: %v", err)
	}
	mapsStore, err := store.NewImageStore(cfg.MapsDir, cfg.StoreMaxFiles, cfg.StoreMaxAge)
	if err != nil {
		log.Fatalf("failed to open maps store: %v", err)
	}

	// Core services.
	eeClient := gee.NewClient(httpClient, cfg.EEProject, cfg.EEAccessToken)
	downloader := fetch.New(httpClient, "thumbnails")
	surveySvc := survey.NewService(eeClient, downloader, outputStore)
	mapsClient := maps.NewClient(httpClient, cfg.MapsAPIKey, cfg.GeocoderAPIKey, mapsStore)

	// Retention sweeper for persisted imagery.
	sweeper := scheduler.New([]*store.ImageStore{outputStore, mapsStore}, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "teg-site-survey",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "teg-site-survey",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, surveySvc, mapsClient)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
