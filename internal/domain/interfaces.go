package domain

import (
	"context"
	"time"
)

// CacheStore хранит кэш опубликованного контента как единое значение.
// Запись всегда перезаписывает значение целиком (last-write-wins),
// читатели получают снимок с версией.
type CacheStore interface {
	Snapshot(ctx context.Context) (CacheSnapshot, error)
	Replace(ctx context.Context, items []PublishedItem) (int64, error)
	Prepend(ctx context.Context, item PublishedItem) (int64, error)
	Update(ctx context.Context, id string, mutate func(*PublishedItem)) (int64, error)
	Remove(ctx context.Context, id string) (int64, error)
}

// DraftStore хранит черновик формы генерации контента.
type DraftStore interface {
	LoadDraft(ctx context.Context) (GenerationDraft, error)
	SaveDraft(ctx context.Context, draft GenerationDraft) error
}

// Notifier рассылает сигнал об изменении кэша. Publish вызывается после
// каждой мутации, Subscribe регистрирует обработчик; опроса нет.
type Notifier interface {
	Publish(ctx context.Context, update CacheUpdate) error
	Subscribe(fn func(CacheUpdate))
}

// Geocoder переводит свободный текст места в город с координатами.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (ResolvedCity, error)
}

// WeatherProvider возвращает текущую температуру и почасовой ряд по координатам.
type WeatherProvider interface {
	Fetch(ctx context.Context, latitude, longitude float64) (WeatherReport, error)
}

// ContentAPI описывает внешний контент-бэкенд (авторитетное хранилище).
type ContentAPI interface {
	GenerateContent(ctx context.Context, req GenerateRequest) ([]ContentSuggestion, error)
	GenerateCustomContent(ctx context.Context, req CustomGenerateRequest) (ContentSuggestion, error)
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
	SearchPlaces(ctx context.Context, query, language string) ([]PlaceResult, error)
	Publish(ctx context.Context, req PublishRequest) (PublishedItem, error)
	ListPublished(ctx context.Context) ([]PublishedItem, error)
	UpdatePublished(ctx context.Context, id string, req PublishRequest) (PublishedItem, error)
	DeletePublished(ctx context.Context, id string) error
	TrackView(ctx context.Context, id string) error
	TrackShare(ctx context.Context, id string) error
}

// GenerateRequest параметры генерации подборки контента.
type GenerateRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Language    string `json:"language"`
}

// CustomGenerateRequest параметры генерации по произвольному промпту.
type CustomGenerateRequest struct {
	Prompt          string `json:"prompt"`
	Destination     string `json:"destination"`
	ContentType     string `json:"content_type"`
	Language        string `json:"language"`
	ExistingContent string `json:"existing_content,omitempty"`
}

// ImageRequest параметры генерации обложки.
type ImageRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Destination string   `json:"destination"`
	Tags        []string `json:"tags,omitempty"`
}

// PublishRequest тело публикации материала на бэкенд.
type PublishRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Type        string   `json:"type"`
	ReadingTime string   `json:"reading_time,omitempty"`
	Quality     string   `json:"quality,omitempty"`
	Tags        []string `json:"tags"`
	Destination string   `json:"destination,omitempty"`
	Status      string   `json:"status,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// ViewCache используется для TTL-кэширования собранных представлений.
type ViewCache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
