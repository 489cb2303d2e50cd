package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
	"travel-dashboard/internal/usecase/events"
	"travel-dashboard/internal/usecase/landmarks"
	"travel-dashboard/internal/usecase/overview"
	"travel-dashboard/internal/usecase/stats"
	"travel-dashboard/internal/usecase/weather"
)

// ViewKey ключ собранного дашборда в кэше представлений.
const ViewKey = "dashboard_view"

// WeatherFetcher получает погодную сводку по списку мест.
type WeatherFetcher interface {
	Fetch(ctx context.Context, places []string) []domain.WeatherInfo
}

// Service пересобирает дашборд из снимка кэша. Каждый пересчёт — чистая
// функция снимка; погода ходит в сеть, поэтому её результат помечается
// версией снимка и отбрасывается, если кэш успел уехать вперёд.
type Service struct {
	cache        domain.CacheStore
	weather      WeatherFetcher
	views        domain.ViewCache
	maxEvents    int
	maxLandmarks int
	maxCities    int
	viewTTL      time.Duration
	log          zerolog.Logger
}

// NewService создаёт сервис дашборда.
func NewService(cache domain.CacheStore, weatherFetcher WeatherFetcher, views domain.ViewCache, maxEvents, maxLandmarks, maxCities int, viewTTL time.Duration, logger zerolog.Logger) *Service {
	if maxEvents <= 0 {
		maxEvents = events.DefaultMax
	}
	if maxLandmarks <= 0 {
		maxLandmarks = landmarks.DefaultMax
	}
	if maxCities <= 0 {
		maxCities = weather.DefaultMaxCities
	}
	if viewTTL <= 0 {
		viewTTL = 5 * time.Minute
	}
	return &Service{
		cache:        cache,
		weather:      weatherFetcher,
		views:        views,
		maxEvents:    maxEvents,
		maxLandmarks: maxLandmarks,
		maxCities:    maxCities,
		viewTTL:      viewTTL,
		log:          logger,
	}
}

// Compute собирает дашборд по текущему снимку кэша.
func (s *Service) Compute(ctx context.Context) (domain.DashboardView, error) {
	start := time.Now()
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return domain.DashboardView{}, fmt.Errorf("снимок кэша: %w", err)
	}

	view := domain.DashboardView{
		Cards:      overview.Derive(snap.Items),
		QuickStats: stats.Derive(snap.Items),
		Events:     events.Derive(snap.Items, s.maxEvents),
		Landmarks:  landmarks.Derive(snap.Items, s.maxLandmarks),
		Version:    snap.Version,
		ComputedAt: time.Now().UTC(),
	}

	cities := weather.CitiesFromItems(snap.Items, s.maxCities)
	if len(cities) > 0 {
		wx := s.weather.Fetch(ctx, cities)
		if stale, err := s.versionMoved(ctx, snap.Version); err == nil && stale {
			// Пока погода резолвилась, кэш изменился: свежий пересчёт
			// уже в пути, этот результат не должен его затереть.
			metrics.StaleWeatherDropped.Inc()
			s.log.Debug().Int64("version", snap.Version).Msg("дашборд: устаревшая погода отброшена")
			if cached, cacheErr := s.Cached(ctx); cacheErr == nil {
				view.Weather = cached.Weather
			}
		} else {
			view.Weather = wx
		}
	}

	metrics.DashboardRecomputeTotal.Inc()
	metrics.DashboardRecomputeSeconds.Observe(time.Since(start).Seconds())
	return view, nil
}

func (s *Service) versionMoved(ctx context.Context, version int64) (bool, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Version != version, nil
}

// Refresh пересобирает дашборд и кладёт его в кэш представлений.
func (s *Service) Refresh(ctx context.Context) (domain.DashboardView, error) {
	view, err := s.Compute(ctx)
	if err != nil {
		return domain.DashboardView{}, err
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return domain.DashboardView{}, fmt.Errorf("сериализация дашборда: %w", err)
	}
	if err := s.views.Set(ViewKey, payload, s.viewTTL); err != nil {
		s.log.Warn().Err(err).Msg("дашборд: не удалось закэшировать представление")
	}
	return view, nil
}

// Cached возвращает дашборд из кэша представлений.
func (s *Service) Cached(ctx context.Context) (domain.DashboardView, error) {
	raw, err := s.views.Get(ViewKey)
	if err != nil {
		return domain.DashboardView{}, err
	}
	var view domain.DashboardView
	if err := json.Unmarshal(raw, &view); err != nil {
		return domain.DashboardView{}, fmt.Errorf("чтение кэша дашборда: %w", err)
	}
	return view, nil
}

// View отдаёт кэшированный дашборд, при промахе пересобирает его.
func (s *Service) View(ctx context.Context) (domain.DashboardView, error) {
	if view, err := s.Cached(ctx); err == nil {
		return view, nil
	}
	return s.Refresh(ctx)
}
