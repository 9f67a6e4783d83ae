package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080" validate:"required,numeric"`

	// Open-Meteo hourly forecast endpoint and the timezone hourly data is requested in.
	WeatherBaseURL  string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	WeatherTimezone string        `envconfig:"WEATHER_TIMEZONE" default:"UTC" validate:"required,timezone"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`

	// Persistence: memory, file or sqlite. Path is a directory for file and
	// a database file for sqlite.
	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"file" validate:"oneof=memory file sqlite"`
	StoragePath    string        `envconfig:"STORAGE_PATH" default:"data"`
	StorageKey     string        `envconfig:"STORAGE_KEY" default:"weather-dashboard-state" validate:"required"`
	SaveDebounce   time.Duration `envconfig:"SAVE_DEBOUNCE" default:"500ms" validate:"gte=0"`

	PlaybackInterval time.Duration `envconfig:"PLAYBACK_INTERVAL" default:"1s" validate:"gt=0"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"8" validate:"gte=1,lte=64"`
}

// Load reads configuration from the environment (and .env if present) with
// sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.StorageBackend != "memory" && cfg.StoragePath == "" {
		return nil, fmt.Errorf("STORAGE_PATH is required for the %s backend", cfg.StorageBackend)
	}
	return cfg, nil
}
