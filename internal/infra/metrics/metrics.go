package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	DashboardRecomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_recompute_seconds",
		Help:    "Время полного пересчёта производных представлений",
		Buckets: prometheus.DefBuckets,
	})
	DashboardRecomputeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_recompute_total",
		Help: "Количество пересчётов производных представлений",
	})
	StaleWeatherDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_stale_weather_dropped_total",
		Help: "Отброшенные результаты погоды из-за смены версии кэша",
	})
	CacheMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "published_cache_mutations_total",
		Help: "Мутации кэша опубликованного контента",
	}, []string{"reason"})
	GeocodeFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geocode_fallback_total",
		Help: "Сколько раз сработал резервный геокодер",
	})
	WeatherSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_skipped_places_total",
		Help: "Места, пропущенные при резолве погоды",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		DashboardRecomputeSeconds,
		DashboardRecomputeTotal,
		StaleWeatherDropped,
		CacheMutationsTotal,
		GeocodeFallbackTotal,
		WeatherSkippedTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	status := strconv.FormatBool(err == nil)
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncCacheMutation увеличивает счётчик мутаций кэша.
func IncCacheMutation(reason string) {
	CacheMutationsTotal.WithLabelValues(reason).Inc()
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}
