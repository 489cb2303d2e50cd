package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// ErrNotFound возвращается, когда геокодер не нашёл место.
var ErrNotFound = errors.New("место не найдено")

const defaultOpenMeteoURL = "https://geocoding-api.open-meteo.com"

// OpenMeteo резолвит места через поисковый API Open-Meteo.
type OpenMeteo struct {
	http    *http.Client
	baseURL string
}

var _ domain.Geocoder = (*OpenMeteo)(nil)

// NewOpenMeteo создаёт геокодер.
func NewOpenMeteo(baseURL string, timeout time.Duration) *OpenMeteo {
	if baseURL == "" {
		baseURL = defaultOpenMeteoURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteo{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Resolve возвращает первый результат поиска.
func (g *OpenMeteo) Resolve(ctx context.Context, place string) (domain.ResolvedCity, error) {
	query := strings.TrimSpace(place)
	if query == "" {
		return domain.ResolvedCity{}, ErrNotFound
	}
	endpoint := fmt.Sprintf("%s/v1/search?name=%s&count=1&language=en&format=json", g.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("geocode: build request: %w", err)
	}
	start := time.Now()
	resp, err := g.http.Do(req)
	metrics.ObserveNetworkRequest("openmeteo", "geocode_search", query, start, err)
	if err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("geocode: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return domain.ResolvedCity{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Admin1    string  `json:"admin1"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(payload.Results) == 0 {
		return domain.ResolvedCity{}, ErrNotFound
	}
	cand := payload.Results[0]
	name := cand.Name
	if name == "" {
		name = cand.Admin1
	}
	if name == "" {
		name = query
	}
	return domain.ResolvedCity{
		Display:   name,
		Latitude:  cand.Latitude,
		Longitude: cand.Longitude,
	}, nil
}
