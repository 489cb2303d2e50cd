package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

const defaultBaseURL = "http://localhost:8000/api/v1"

// Client обращается к контент-бэкенду — авторитетному хранилищу
// опубликованных материалов и генератору контента.
type Client struct {
	http    *http.Client
	baseURL string
}

var _ domain.ContentAPI = (*Client)(nil)

// NewClient создаёт клиента контент-бэкенда.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("contentapi: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("contentapi: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	operation := method + " " + path
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("contentapi", operation, c.baseURL, start, err)
		return fmt.Errorf("contentapi: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("contentapi", operation, c.baseURL, start, err)
		return fmt.Errorf("contentapi: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if unmarshalErr := json.Unmarshal(respBody, &apiErr); unmarshalErr == nil && apiErr.Detail != "" {
			err = fmt.Errorf("contentapi: %s", apiErr.Detail)
		} else {
			err = fmt.Errorf("contentapi: unexpected status %d", resp.StatusCode)
		}
		metrics.ObserveNetworkRequest("contentapi", operation, c.baseURL, start, err)
		return err
	}
	metrics.ObserveNetworkRequest("contentapi", operation, c.baseURL, start, nil)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("contentapi: decode response: %w", err)
	}
	return nil
}

// GenerateContent запрашивает подборку контента по направлению.
func (c *Client) GenerateContent(ctx context.Context, req domain.GenerateRequest) ([]domain.ContentSuggestion, error) {
	if req.Language == "" {
		req.Language = "en"
	}
	var resp struct {
		Suggestions []domain.ContentSuggestion `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodPost, "/generate-content", req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// GenerateCustomContent запрашивает генерацию по произвольному промпту.
func (c *Client) GenerateCustomContent(ctx context.Context, req domain.CustomGenerateRequest) (domain.ContentSuggestion, error) {
	if req.Language == "" {
		req.Language = "en"
	}
	var resp domain.ContentSuggestion
	if err := c.do(ctx, http.MethodPost, "/generate-custom-content", req, &resp); err != nil {
		return domain.ContentSuggestion{}, err
	}
	return resp, nil
}

// GenerateImage запрашивает обложку для материала.
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageRequest) (string, error) {
	var resp struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/generate-image", req, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// SearchPlaces ищет места по свободному тексту.
func (c *Client) SearchPlaces(ctx context.Context, query, language string) ([]domain.PlaceResult, error) {
	if language == "" {
		language = "en"
	}
	var resp struct {
		SearchQuery string               `json:"search_query"`
		Places      []domain.PlaceResult `json:"places"`
	}
	body := map[string]string{"query": query, "language": language}
	if err := c.do(ctx, http.MethodPost, "/search-places", body, &resp); err != nil {
		return nil, err
	}
	return resp.Places, nil
}

// Publish публикует материал и возвращает созданную запись.
func (c *Client) Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishedItem, error) {
	var item domain.PublishedItem
	if err := c.do(ctx, http.MethodPost, "/publish", req, &item); err != nil {
		return domain.PublishedItem{}, err
	}
	return item, nil
}

// ListPublished возвращает все опубликованные материалы.
func (c *Client) ListPublished(ctx context.Context) ([]domain.PublishedItem, error) {
	var resp struct {
		Items []domain.PublishedItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/published", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UpdatePublished обновляет материал на бэкенде.
func (c *Client) UpdatePublished(ctx context.Context, id string, req domain.PublishRequest) (domain.PublishedItem, error) {
	var item domain.PublishedItem
	if err := c.do(ctx, http.MethodPut, "/published/"+url.PathEscape(id), req, &item); err != nil {
		return domain.PublishedItem{}, err
	}
	return item, nil
}

// DeletePublished удаляет материал на бэкенде.
func (c *Client) DeletePublished(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/published/"+url.PathEscape(id), nil, nil)
}

// TrackView фиксирует просмотр материала.
func (c *Client) TrackView(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/published/"+url.PathEscape(id)+"/view", nil, nil)
}

// TrackShare фиксирует репост материала.
func (c *Client) TrackShare(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/published/"+url.PathEscape(id)+"/share", nil, nil)
}
