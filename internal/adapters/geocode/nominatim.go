package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim резервный геокодер: прямой поиск плюс обратное
// геокодирование, чтобы восстановить человекочитаемое имя города.
type Nominatim struct {
	http    *http.Client
	baseURL string
}

var _ domain.Geocoder = (*Nominatim)(nil)

// NewNominatim создаёт геокодер.
func NewNominatim(baseURL string, timeout time.Duration) *Nominatim {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *Nominatim) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en")
	start := time.Now()
	resp, err := g.http.Do(req)
	metrics.ObserveNetworkRequest("nominatim", operation, g.baseURL, start, err)
	if err != nil {
		return fmt.Errorf("nominatim: do request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("nominatim: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("nominatim: unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("nominatim: decode response: %w", err)
	}
	return nil
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
}

func (a nominatimAddress) cityName() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	case a.Village != "":
		return a.Village
	default:
		return a.County
	}
}

// Resolve ищет место прямым запросом и уточняет имя города обратным.
func (g *Nominatim) Resolve(ctx context.Context, place string) (domain.ResolvedCity, error) {
	query := strings.TrimSpace(place)
	if query == "" {
		return domain.ResolvedCity{}, ErrNotFound
	}
	var hits []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	endpoint := fmt.Sprintf("%s/search?q=%s&format=jsonv2&limit=1", g.baseURL, url.QueryEscape(query))
	if err := g.getJSON(ctx, "forward_search", endpoint, &hits); err != nil {
		return domain.ResolvedCity{}, err
	}
	if len(hits) == 0 {
		return domain.ResolvedCity{}, ErrNotFound
	}
	hit := hits[0]
	lat, err := strconv.ParseFloat(hit.Lat, 64)
	if err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("nominatim: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(hit.Lon, 64)
	if err != nil {
		return domain.ResolvedCity{}, fmt.Errorf("nominatim: parse lon: %w", err)
	}

	// Обратный запрос может не удаться, тогда берём начало display_name.
	name := ""
	var rev struct {
		Address nominatimAddress `json:"address"`
	}
	revEndpoint := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s", g.baseURL,
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))
	if err := g.getJSON(ctx, "reverse", revEndpoint, &rev); err == nil {
		name = rev.Address.cityName()
	}
	if name == "" && hit.DisplayName != "" {
		name = strings.TrimSpace(strings.SplitN(hit.DisplayName, ",", 2)[0])
	}
	if name == "" {
		name = query
	}
	return domain.ResolvedCity{Display: name, Latitude: lat, Longitude: lon}, nil
}

// Chain пробует геокодеры по очереди и возвращает первый успех.
type Chain struct {
	primary  domain.Geocoder
	fallback domain.Geocoder
}

var _ domain.Geocoder = (*Chain)(nil)

// NewChain создаёт цепочку геокодеров.
func NewChain(primary, fallback domain.Geocoder) *Chain {
	return &Chain{primary: primary, fallback: fallback}
}

// Resolve сначала спрашивает основной геокодер, при любой ошибке — резервный.
func (c *Chain) Resolve(ctx context.Context, place string) (domain.ResolvedCity, error) {
	city, err := c.primary.Resolve(ctx, place)
	if err == nil {
		return city, nil
	}
	metrics.GeocodeFallbackTotal.Inc()
	return c.fallback.Resolve(ctx, place)
}
