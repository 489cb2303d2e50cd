package weather

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// DefaultMaxCities ограничивает число направлений в погодной сводке.
const DefaultMaxCities = 4

// Service резолвит направления из кэша в города и собирает по ним
// погодную сводку.
type Service struct {
	geocoder      domain.Geocoder
	provider      domain.WeatherProvider
	maxCities     int
	maxConcurrent int
	log           zerolog.Logger
}

// NewService создаёт сервис погоды.
func NewService(geocoder domain.Geocoder, provider domain.WeatherProvider, maxCities, maxConcurrent int, logger zerolog.Logger) *Service {
	if maxCities <= 0 {
		maxCities = DefaultMaxCities
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		geocoder:      geocoder,
		provider:      provider,
		maxCities:     maxCities,
		maxConcurrent: maxConcurrent,
		log:           logger,
	}
}

// CitiesFromItems собирает направления из кэша: trim, дедупликация без
// учёта регистра, порядок появления сохраняется.
func CitiesFromItems(items []domain.PublishedItem, max int) []string {
	if max <= 0 {
		max = DefaultMaxCities
	}
	seen := make(map[string]struct{})
	cities := make([]string, 0, max)
	for _, item := range items {
		place := item.Place()
		if place == "" {
			continue
		}
		key := strings.ToLower(place)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, place)
		if len(cities) == max {
			break
		}
	}
	return cities
}

// Fetch резолвит каждое место и запрашивает погоду. Места обходятся с
// ограниченным параллелизмом, порядок результатов соответствует входу;
// несработавшие места молча пропускаются, ретраев нет.
func (s *Service) Fetch(ctx context.Context, places []string) []domain.WeatherInfo {
	if len(places) > s.maxCities {
		places = places[:s.maxCities]
	}
	results := make([]*domain.WeatherInfo, len(places))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for i, place := range places {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, raw string) {
			defer wg.Done()
			defer func() { <-sem }()
			info, err := s.fetchOne(ctx, raw)
			if err != nil {
				metrics.WeatherSkippedTotal.Inc()
				s.log.Debug().Err(err).Str("place", raw).Msg("погода: место пропущено")
				return
			}
			results[idx] = &info
		}(i, place)
	}
	wg.Wait()

	out := make([]domain.WeatherInfo, 0, len(places))
	for _, info := range results {
		if info != nil {
			out = append(out, *info)
		}
	}
	return out
}

func (s *Service) fetchOne(ctx context.Context, place string) (domain.WeatherInfo, error) {
	city, err := s.geocoder.Resolve(ctx, place)
	if err != nil {
		return domain.WeatherInfo{}, fmt.Errorf("резолв места %q: %w", place, err)
	}
	report, err := s.provider.Fetch(ctx, city.Latitude, city.Longitude)
	if err != nil {
		return domain.WeatherInfo{}, fmt.Errorf("погода для %q: %w", city.Display, err)
	}
	return buildInfo(city.Display, report)
}

func buildInfo(city string, report domain.WeatherReport) (domain.WeatherInfo, error) {
	current := report.Current
	if !report.HasCurrent {
		if len(report.HourlyTemps) == 0 {
			return domain.WeatherInfo{}, fmt.Errorf("нет данных о температуре для %q", city)
		}
		current = report.HourlyTemps[len(report.HourlyTemps)-1]
	}

	change := 0
	if len(report.HourlyTemps) >= 2 {
		last := report.HourlyTemps[len(report.HourlyTemps)-1]
		prev := report.HourlyTemps[len(report.HourlyTemps)-2]
		change = int(math.Round(last - prev))
	}

	// TODO: маппить weathercode в текстовое состояние; пока наличие
	// current_weather даёт «Sunny».
	condition := domain.LocationPlaceholder
	if report.HasCurrent {
		condition = "Sunny"
	}

	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return domain.WeatherInfo{
		City:        city,
		Condition:   condition,
		Temperature: fmt.Sprintf("%d°C", int(math.Round(current))),
		Change:      fmt.Sprintf("%s%d°", sign, change),
		IsPositive:  change >= 0,
	}, nil
}
