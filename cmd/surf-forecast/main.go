package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/surf-forecast/internal/api/http"
	"github.com/i474232898/surf-forecast/internal/config"
	"github.com/i474232898/surf-forecast/internal/scheduler"
	"github.com/i474232898/surf-forecast/internal/store"
	"github.com/i474232898/surf-forecast/internal/weather"
	"github.com/i474232898/surf-forecast/internal/weather/providers"
)

func main() {
	// Load configuration (.env is read by config.Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider, err := providers.New(cfg.Provider, httpClient, providers.Options{
		StormGlassAPIKey:  cfg.StormGlassAPIKey,
		StormGlassBaseURL: cfg.StormGlassBaseURL,
		WeatherAPIKey:     cfg.WeatherAPIKey,
		OpenWeatherAPIKey: cfg.OpenWeatherAPIKey,
	})
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}
	log.Printf("INFO: using forecast provider %s", provider.Name())

	var locations weather.LocationStore
	switch cfg.LocationStore {
	case config.StoreSQLite:
		sqliteStore, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open beach store: %v", err)
		}
		defer sqliteStore.Close()
		locations = sqliteStore
	default:
		locations = store.NewMemoryStore(cfg.MaxBeachesPerUser)
	}

	// Core service orchestrating the provider and the beach store.
	service := weather.NewService(locations, provider, cfg.ForecastConcurrency)

	// Circuit breaker state reporting.
	var reporters []scheduler.CircuitReporter
	if r, ok := provider.(scheduler.CircuitReporter); ok {
		reporters = append(reporters, r)
	}
	sched := scheduler.New(cfg.HealthInterval, reporters...)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "surf-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "surf-forecast",
			"provider": provider.Name(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
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
