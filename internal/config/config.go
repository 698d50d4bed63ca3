package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-daily-summary/internal/weather"
)

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	// Forecast source.
	OpenMeteoURL   string `validate:"required,url"`
	Location       weather.Location
	HTTPTimeout    time.Duration `validate:"gt=0"`
	ProxyURL       string        `validate:"omitempty,url"`
	BreakerTimeout time.Duration `validate:"gte=0"`

	// Widget lifetime.
	WidgetTTL          time.Duration `validate:"gte=0"` // 0 = unlimited
	WidgetMax          int           `validate:"gte=0"` // 0 = unlimited
	WidgetReapInterval time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		LogLevel:     getenvDefault("LOG_LEVEL", "info"),
		OpenMeteoURL: getenvDefault("OPENMETEO_URL", "https://api.open-meteo.com/v1"),
		ProxyURL:     os.Getenv("PROXY_URL"),
		WidgetMax:    getenvInt("WIDGET_MAX", 100),
	}

	var err error
	if cfg.Location.Latitude, err = getenvFloat("WEATHER_LATITUDE", weather.DefaultLocation.Latitude); err != nil {
		return nil, err
	}
	if cfg.Location.Longitude, err = getenvFloat("WEATHER_LONGITUDE", weather.DefaultLocation.Longitude); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WidgetTTL, err = getenvDuration("WIDGET_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WidgetReapInterval, err = getenvDuration("WIDGET_REAP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
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
