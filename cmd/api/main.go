package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
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
	httpinfra "travel-dashboard/internal/infra/http"
	logpkg "travel-dashboard/internal/infra/log"
	"travel-dashboard/internal/infra/metrics"
	"travel-dashboard/internal/usecase/dashboard"
	"travel-dashboard/internal/usecase/generation"
	"travel-dashboard/internal/usecase/library"
	"travel-dashboard/internal/usecase/weather"
)

func main() {
	cfg := config.Load()
	logger := logpkg.NewLogger(cfg.AppEnv, "api")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheStore, draftStore, views, closeStores := buildStores(ctx, cfg, logger)
	defer closeStores()

	bus := notify.NewBus()
	var notifier domain.Notifier = bus
	var rabbit *notify.Rabbit
	if cfg.Rabbit.URL != "" {
		var err error
		rabbit, err = notify.NewRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger.With().Str("component", "rabbit").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к rabbitmq")
		}
		defer rabbit.Close()
		notifier = notify.NewFanout(bus, rabbit)
	}

	apiClient := contentapi.NewClient(cfg.ContentAPI.BaseURL, cfg.ContentAPI.Timeout)
	geocoder := geocode.NewChain(
		geocode.NewOpenMeteo(cfg.Geo.OpenMeteoURL, cfg.Geo.Timeout),
		geocode.NewNominatim(cfg.Geo.NominatimURL, cfg.Geo.Timeout),
	)
	forecast := weatherapi.NewOpenMeteo(cfg.Geo.ForecastURL, cfg.Geo.Timeout)

	weatherSvc := weather.NewService(geocoder, forecast, cfg.Geo.MaxCities, cfg.Geo.MaxConcurrent, logger.With().Str("component", "weather").Logger())
	librarySvc := library.NewService(apiClient, cacheStore, notifier, logger.With().Str("component", "library").Logger())
	generationSvc := generation.NewService(apiClient, cacheStore, draftStore, notifier, logger.With().Str("component", "generation").Logger())
	dashboardSvc := dashboard.NewService(cacheStore, weatherSvc, views,
		cfg.Limits.MaxEvents, cfg.Limits.MaxLandmarks, cfg.Geo.MaxCities,
		cfg.Refresher.ViewTTL, logger.With().Str("component", "dashboard").Logger())

	// Локальные мутации сразу пересобирают представление, не дожидаясь
	// внешнего пересчётчика.
	bus.Subscribe(func(update domain.CacheUpdate) {
		go func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := dashboardSvc.Refresh(refreshCtx); err != nil {
				logger.Warn().Err(err).Int64("version", update.Version).Msg("api: пересборка дашборда не удалась")
			}
		}()
	})

	if err := librarySvc.Sync(ctx); err != nil {
		logger.Warn().Err(err).Msg("api: стартовая синхронизация не удалась, работаем по кэшу")
	}

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	mountRoutes(srv.Router, routesDeps{
		logger:     logger,
		dashboard:  dashboardSvc,
		library:    librarySvc,
		generation: generationSvc,
	})

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()
	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildStores выбирает хранилище кэша по конфигу: Redis, затем Postgres,
// иначе процессная память (подходит только для dev).
func buildStores(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.CacheStore, domain.DraftStore, domain.ViewCache, func()) {
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		redisStore := store.NewRedis(client)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к redis")
		}
		return redisStore, redisStore, cache.NewRedis(client), func() { _ = client.Close() }
	case cfg.PGDSN != "":
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: нет подключения к БД")
		}
		pgStore := store.NewPostgres(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось подготовить схему")
		}
		return pgStore, pgStore, cache.NewMemory(), pool.Close
	default:
		logger.Warn().Msg("api: хранилище не задано, используем память процесса")
		memory := store.NewMemory()
		return memory, memory, cache.NewMemory(), func() {}
	}
}

type routesDeps struct {
	logger     zerolog.Logger
	dashboard  *dashboard.Service
	library    *library.Service
	generation *generation.Service
}

func mountRoutes(r chi.Router, deps routesDeps) {
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			view, err := deps.dashboard.View(r.Context())
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: дашборд")
				writeError(w, http.StatusInternalServerError, "failed to build dashboard")
				return
			}
			writeJSON(w, view)
		})
		api.Get("/dashboard/overview", dashboardSection(deps, func(view domain.DashboardView) any { return view.Cards }))
		api.Get("/dashboard/quick-stats", dashboardSection(deps, func(view domain.DashboardView) any { return view.QuickStats }))
		api.Get("/dashboard/events", dashboardSection(deps, func(view domain.DashboardView) any { return view.Events }))
		api.Get("/dashboard/landmarks", dashboardSection(deps, func(view domain.DashboardView) any { return view.Landmarks }))
		api.Get("/dashboard/weather", dashboardSection(deps, func(view domain.DashboardView) any { return view.Weather }))

		api.Get("/published", func(w http.ResponseWriter, r *http.Request) {
			filter := library.Filter{
				Query:    r.URL.Query().Get("q"),
				Type:     r.URL.Query().Get("type"),
				Status:   r.URL.Query().Get("status"),
				Location: r.URL.Query().Get("location"),
				Theme:    r.URL.Query().Get("theme"),
			}
			items, err := deps.library.List(r.Context(), filter)
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: список материалов")
				writeError(w, http.StatusInternalServerError, "failed to list published content")
				return
			}
			writeJSON(w, map[string]any{"items": items})
		})

		api.Post("/published/sync", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.library.Sync(r.Context()); err != nil {
				deps.logger.Error().Err(err).Msg("api: синхронизация")
				writeError(w, http.StatusBadGateway, "failed to sync with content backend")
				return
			}
			writeJSON(w, map[string]string{"status": "ok"})
		})

		api.Put("/published/{id}", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req domain.PublishRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			item, err := deps.library.Edit(r.Context(), chi.URLParam(r, "id"), req)
			if err != nil {
				writeLibraryError(w, deps.logger, "правка материала", err)
				return
			}
			writeJSON(w, item)
		})

		api.Delete("/published/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.library.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeLibraryError(w, deps.logger, "удаление материала", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		api.Post("/published/{id}/view", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.library.TrackView(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeLibraryError(w, deps.logger, "учёт просмотра", err)
				return
			}
			writeJSON(w, map[string]string{"status": "ok"})
		})

		api.Post("/published/{id}/share", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.library.TrackShare(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeLibraryError(w, deps.logger, "учёт репоста", err)
				return
			}
			writeJSON(w, map[string]string{"status": "ok"})
		})

		api.Post("/publish", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req domain.PublishRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if req.Title == "" || req.Content == "" {
				writeError(w, http.StatusBadRequest, "title and content are required")
				return
			}
			item, err := deps.generation.Publish(r.Context(), req)
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: публикация")
				writeError(w, http.StatusBadGateway, "failed to publish content")
				return
			}
			writeJSON(w, item)
		})

		api.Post("/generate-content", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req domain.GenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			suggestions, err := deps.generation.GenerateSuggestions(r.Context(), req)
			if err != nil {
				if errors.Is(err, generation.ErrEmptyDestination) {
					writeError(w, http.StatusBadRequest, "destination is required")
					return
				}
				deps.logger.Error().Err(err).Msg("api: генерация подборки")
				writeError(w, http.StatusBadGateway, "failed to generate content")
				return
			}
			writeJSON(w, map[string]any{"suggestions": suggestions})
		})

		api.Post("/generate-custom-content", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req domain.CustomGenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			suggestion, err := deps.generation.GenerateCustom(r.Context(), req)
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: генерация по промпту")
				writeError(w, http.StatusBadGateway, "failed to generate content")
				return
			}
			writeJSON(w, suggestion)
		})

		api.Post("/generate-image", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req domain.ImageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			imageURL, err := deps.generation.GenerateImage(r.Context(), req)
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: генерация обложки")
				writeError(w, http.StatusBadGateway, "failed to generate image")
				return
			}
			writeJSON(w, map[string]string{"image_url": imageURL})
		})

		api.Post("/search-places", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req struct {
				Query    string `json:"query"`
				Language string `json:"language"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			places, err := deps.generation.SearchPlaces(r.Context(), req.Query, req.Language)
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: поиск мест")
				writeError(w, http.StatusBadGateway, "failed to search places")
				return
			}
			writeJSON(w, map[string]any{"places": places})
		})

		api.Get("/generation/draft", func(w http.ResponseWriter, r *http.Request) {
			draft, err := deps.generation.Draft(r.Context())
			if err != nil {
				deps.logger.Error().Err(err).Msg("api: чтение черновика")
				writeError(w, http.StatusInternalServerError, "failed to load draft")
				return
			}
			writeJSON(w, draft)
		})

		api.Put("/generation/draft", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var draft domain.GenerationDraft
			if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if err := deps.generation.SaveDraft(r.Context(), draft); err != nil {
				deps.logger.Error().Err(err).Msg("api: сохранение черновика")
				writeError(w, http.StatusInternalServerError, "failed to save draft")
				return
			}
			writeJSON(w, map[string]string{"status": "ok"})
		})
	})
}

func dashboardSection(deps routesDeps, pick func(domain.DashboardView) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := deps.dashboard.View(r.Context())
		if err != nil {
			deps.logger.Error().Err(err).Msg("api: дашборд")
			writeError(w, http.StatusInternalServerError, "failed to build dashboard")
			return
		}
		writeJSON(w, pick(view))
	}
}

func writeLibraryError(w http.ResponseWriter, logger zerolog.Logger, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	logger.Error().Err(err).Msg("api: " + op)
	writeError(w, http.StatusBadGateway, "content backend request failed")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
