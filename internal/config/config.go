package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/surf-forecast/internal/weather/providers"
)

// Location store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	Port string

	// Provider selects the External Forecast Client (stormglass, openmeteo, weatherapi, openweather).
	Provider          string
	StormGlassAPIKey  string
	StormGlassBaseURL string
	WeatherAPIKey     string
	OpenWeatherAPIKey string

	HTTPTimeout    time.Duration // per outbound provider call
	RequestTimeout time.Duration // whole forecast request

	// ForecastConcurrency bounds parallel beach fetches; 1 fetches sequentially.
	ForecastConcurrency int

	JWTSecret string

	LocationStore     string
	SQLitePath        string
	MaxBeachesPerUser int // 0 = unlimited
	HealthInterval    time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.Provider = getenvDefault("FORECAST_PROVIDER", providers.StormGlass)
	switch cfg.Provider {
	case providers.StormGlass, providers.OpenMeteo, providers.WeatherAPI, providers.OpenWeather:
	default:
		return nil, fmt.Errorf("invalid FORECAST_PROVIDER: %q", cfg.Provider)
	}
	cfg.StormGlassAPIKey = os.Getenv("STORMGLASS_API_KEY")
	cfg.StormGlassBaseURL = getenvDefault("STORMGLASS_BASE_URL", "https://api.stormglass.io/v2")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = getenvDuration("HEALTH_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ForecastConcurrency, err = getenvInt("FORECAST_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.MaxBeachesPerUser, err = getenvInt("MAX_BEACHES_PER_USER", 0); err != nil {
		return nil, err
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.LocationStore = getenvDefault("LOCATION_STORE", StoreMemory)
	switch cfg.LocationStore {
	case StoreMemory, StoreSQLite:
	default:
		return nil, fmt.Errorf("invalid LOCATION_STORE: %q", cfg.LocationStore)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/surf-forecast.db")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
