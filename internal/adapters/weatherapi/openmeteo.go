package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

const defaultForecastURL = "https://api.open-meteo.com"

// OpenMeteo получает текущую температуру и почасовой ряд за прошедшие
// сутки из API прогноза Open-Meteo.
type OpenMeteo struct {
	http    *http.Client
	baseURL string
}

var _ domain.WeatherProvider = (*OpenMeteo)(nil)

// NewOpenMeteo создаёт провайдера погоды.
func NewOpenMeteo(baseURL string, timeout time.Duration) *OpenMeteo {
	if baseURL == "" {
		baseURL = defaultForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteo{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Fetch возвращает погодный отчёт по координатам.
func (p *OpenMeteo) Fetch(ctx context.Context, latitude, longitude float64) (domain.WeatherReport, error) {
	endpoint := fmt.Sprintf("%s/v1/forecast?latitude=%s&longitude=%s&hourly=temperature_2m&past_days=1&current_weather=true&timezone=auto",
		p.baseURL,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: build request: %w", err)
	}
	start := time.Now()
	resp, err := p.http.Do(req)
	metrics.ObserveNetworkRequest("openmeteo", "forecast", "forecast", start, err)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: do request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return domain.WeatherReport{}, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
		} `json:"current_weather"`
		Hourly struct {
			Temperature2M []float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("weather: decode response: %w", err)
	}
	report := domain.WeatherReport{HourlyTemps: payload.Hourly.Temperature2M}
	if payload.CurrentWeather != nil {
		report.HasCurrent = true
		report.Current = payload.CurrentWeather.Temperature
	}
	return report, nil
}
