package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"travel-dashboard/internal/adapters/contentapi"
	"travel-dashboard/internal/adapters/geocode"
	"travel-dashboard/internal/adapters/notify"
	"travel-dashboard/internal/adapters/store"
	"travel-dashboard/internal/adapters/weatherapi"
	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/cache"
	"travel-dashboard/internal/infra/config"
	"travel-dashboard/internal/infra/db"
	logpkg "travel-dashboard/internal/infra/log"
	"travel-dashboard/internal/infra/metrics"
	"travel-dashboard/internal/usecase/dashboard"
	"travel-dashboard/internal/usecase/library"
	"travel-dashboard/internal/usecase/weather"
)

// refresher держит производные представления свежими: пересобирает дашборд
// по сигналам об изменении кэша и периодически пересинхронизирует кэш с
// контент-бэкендом.
func main() {
	cfg := config.Load()
	logger := logpkg.NewLogger(cfg.AppEnv, "refresher")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	cacheStore, views, closeStores := buildStores(ctx, cfg, logger)
	defer closeStores()

	apiClient := contentapi.NewClient(cfg.ContentAPI.BaseURL, cfg.ContentAPI.Timeout)
	geocoder := geocode.NewChain(
		geocode.NewOpenMeteo(cfg.Geo.OpenMeteoURL, cfg.Geo.Timeout),
		geocode.NewNominatim(cfg.Geo.NominatimURL, cfg.Geo.Timeout),
	)
	forecast := weatherapi.NewOpenMeteo(cfg.Geo.ForecastURL, cfg.Geo.Timeout)

	bus := notify.NewBus()
	var notifier domain.Notifier = bus
	if cfg.Rabbit.URL != "" {
		rabbit, err := notify.NewRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger.With().Str("component", "rabbit").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("refresher: нет подключения к rabbitmq")
		}
		defer rabbit.Close()
		if err := rabbit.Listen(ctx); err != nil {
			logger.Fatal().Err(err).Msg("refresher: не удалось подписаться на обменник")
		}
		notifier = notify.NewFanout(bus, rabbit)
	}

	weatherSvc := weather.NewService(geocoder, forecast, cfg.Geo.MaxCities, cfg.Geo.MaxConcurrent, logger.With().Str("component", "weather").Logger())
	librarySvc := library.NewService(apiClient, cacheStore, notifier, logger.With().Str("component", "library").Logger())
	dashboardSvc := dashboard.NewService(cacheStore, weatherSvc, views,
		cfg.Limits.MaxEvents, cfg.Limits.MaxLandmarks, cfg.Geo.MaxCities,
		cfg.Refresher.ViewTTL, logger.With().Str("component", "dashboard").Logger())

	refresh := func(reason string, version int64) {
		refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := dashboardSvc.Refresh(refreshCtx); err != nil {
			logger.Error().Err(err).Str("reason", reason).Int64("version", version).Msg("refresher: пересборка не удалась")
			return
		}
		logger.Info().Str("reason", reason).Int64("version", version).Msg("refresher: дашборд пересобран")
	}

	// Каждое изменение кэша, локальное или пришедшее по обменнику,
	// запускает пересборку.
	notifier.Subscribe(func(update domain.CacheUpdate) {
		refresh(update.Reason, update.Version)
	})

	if err := librarySvc.Sync(ctx); err != nil {
		logger.Warn().Err(err).Msg("refresher: стартовая синхронизация не удалась")
		refresh("startup", 0)
	}

	ticker := time.NewTicker(cfg.Refresher.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("refresher: остановка")
			return
		case <-ticker.C:
			if err := librarySvc.Sync(ctx); err != nil {
				logger.Error().Err(err).Msg("refresher: плановая синхронизация не удалась")
			}
		}
	}
}

func buildStores(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.CacheStore, domain.ViewCache, func()) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		redisStore := store.NewRedis(client)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("refresher: нет подключения к redis")
		}
		return redisStore, cache.NewRedis(client), func() { _ = client.Close() }
	case cfg.PGDSN != "":
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("refresher: нет подключения к БД")
		}
		pgStore := store.NewPostgres(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("refresher: не удалось подготовить схему")
		}
		return pgStore, cache.NewMemory(), pool.Close
	default:
		logger.Warn().Msg("refresher: хранилище не задано, используем память процесса")
		return store.NewMemory(), cache.NewMemory(), func() {}
	}
}
