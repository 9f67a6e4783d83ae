package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Persistence backend standing in for browser local storage.
	backend, err := store.OpenBackend(cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.StorageBackend, err)
	}
	st := store.New(backend,
		store.WithKey(cfg.StorageKey),
		store.WithDebounce(cfg.SaveDebounce),
	)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenMeteoProvider(
		providers.HTTPClientConfig{Client: httpClient},
		cfg.WeatherBaseURL,
		cfg.WeatherTimezone,
	)
	service := weather.NewService(provider)

	dash := dashboard.New(service, st, dashboard.WithConcurrency(cfg.FetchConcurrency))
	defer func() {
		if err := dash.Close(); err != nil {
			log.Printf("ERROR: failed to close storage: %v", err)
		}
	}()

	// Restored polygons get weather for the restored window before serving.
	startup, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dash.Refresh(startup)
	cancel()

	player := scheduler.New(dash, cfg.PlaybackInterval)
	defer player.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
			"storage": cfg.StorageBackend,
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Dashboard: dash,
		Weather:   service,
		Playback:  player,
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

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
