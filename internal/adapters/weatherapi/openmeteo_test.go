package weatherapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchParsesCurrentAndHourly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("hourly") != "temperature_2m" || q.Get("past_days") != "1" || q.Get("current_weather") != "true" {
			t.Fatalf("неверные параметры запроса: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"current_weather": map[string]any{"temperature": 21.4},
			"hourly":          map[string]any{"temperature_2m": []float64{18, 19, 21}},
		})
	}))
	defer server.Close()

	provider := NewOpenMeteo(server.URL, time.Second)
	report, err := provider.Fetch(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !report.HasCurrent || report.Current != 21.4 {
		t.Fatalf("неверная текущая температура: %+v", report)
	}
	if len(report.HourlyTemps) != 3 || report.HourlyTemps[2] != 21 {
		t.Fatalf("неверный почасовой ряд: %v", report.HourlyTemps)
	}
}

func TestFetchWithoutCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hourly": map[string]any{"temperature_2m": []float64{10, 11}},
		})
	}))
	defer server.Close()

	provider := NewOpenMeteo(server.URL, time.Second)
	report, err := provider.Fetch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if report.HasCurrent {
		t.Fatalf("без current_weather флаг должен быть снят")
	}
	if len(report.HourlyTemps) != 2 {
		t.Fatalf("неверный почасовой ряд: %v", report.HourlyTemps)
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewOpenMeteo(server.URL, time.Second)
	if _, err := provider.Fetch(context.Background(), 0, 0); err == nil {
		t.Fatalf("ожидали ошибку на 503")
	}
}
