package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port   int    `envconfig:"PORT" default:"8080"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	ContentAPI struct {
		BaseURL string        `envconfig:"CONTENT_API_URL" default:"http://localhost:8000/api/v1"`
		Timeout time.Duration `envconfig:"CONTENT_API_TIMEOUT" default:"30s"`
	} `envconfig:""`

	Geo struct {
		OpenMeteoURL  string        `envconfig:"GEO_OPENMETEO_URL" default:"https://geocoding-api.open-meteo.com"`
		NominatimURL  string        `envconfig:"GEO_NOMINATIM_URL" default:"https://nominatim.openstreetmap.org"`
		ForecastURL   string        `envconfig:"WEATHER_FORECAST_URL" default:"https://api.open-meteo.com"`
		Timeout       time.Duration `envconfig:"GEO_TIMEOUT" default:"10s"`
		MaxCities     int           `envconfig:"WEATHER_MAX_CITIES" default:"4"`
		MaxConcurrent int           `envconfig:"WEATHER_MAX_CONCURRENT" default:"2"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Rabbit struct {
		URL      string `envconfig:"RABBIT_URL"`
		Exchange string `envconfig:"RABBIT_EXCHANGE" default:"published-cache-updated"`
	} `envconfig:""`

	Limits struct {
		MaxEvents    int `envconfig:"DASHBOARD_MAX_EVENTS" default:"10"`
		MaxLandmarks int `envconfig:"DASHBOARD_MAX_LANDMARKS" default:"10"`
	} `envconfig:""`

	Refresher struct {
		ViewTTL      time.Duration `envconfig:"REFRESHER_VIEW_TTL" default:"5m"`
		SyncInterval time.Duration `envconfig:"REFRESHER_SYNC_INTERVAL" default:"10m"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
