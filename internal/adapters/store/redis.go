package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// Redis реализует domain.CacheStore и domain.DraftStore поверх Redis.
// Кэш пишется целиком одним значением: побеждает последняя запись,
// частичные записи не наблюдаемы.
type Redis struct {
	client *redis.Client
}

var (
	_ domain.CacheStore = (*Redis)(nil)
	_ domain.DraftStore = (*Redis)(nil)
)

// NewRedis создаёт хранилище кэша.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Snapshot возвращает снимок кэша вместе с версией.
func (s *Redis) Snapshot(ctx context.Context) (domain.CacheSnapshot, error) {
	start := time.Now()
	vals, err := s.client.MGet(ctx, KeyCache, KeyVersion).Result()
	metrics.ObserveNetworkRequest("redis", "mget", KeyCache, start, err)
	if err != nil {
		return domain.CacheSnapshot{}, fmt.Errorf("чтение кэша: %w", err)
	}
	snap := domain.CacheSnapshot{TakenAt: time.Now().UTC()}
	if raw, ok := vals[0].(string); ok {
		snap.Items = decodeItems([]byte(raw))
	}
	if raw, ok := vals[1].(string); ok {
		snap.Version, _ = strconv.ParseInt(raw, 10, 64)
	}
	return snap, nil
}

// Replace перезаписывает кэш целиком.
func (s *Redis) Replace(ctx context.Context, items []domain.PublishedItem) (int64, error) {
	return s.write(ctx, items)
}

// Prepend добавляет материал в начало кэша.
func (s *Redis) Prepend(ctx context.Context, item domain.PublishedItem) (int64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, prependItem(snap.Items, item))
}

// Update меняет материал на месте.
func (s *Redis) Update(ctx context.Context, id string, mutate func(*domain.PublishedItem)) (int64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	items, err := updateItem(snap.Items, id, mutate)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, items)
}

// Remove удаляет материал из кэша.
func (s *Redis) Remove(ctx context.Context, id string) (int64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	items, err := removeItem(snap.Items, id)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, items)
}

func (s *Redis) write(ctx context.Context, items []domain.PublishedItem) (int64, error) {
	if items == nil {
		items = []domain.PublishedItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("сериализация кэша: %w", err)
	}
	now := time.Now().UTC()
	start := now
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyCache, payload, 0)
	pipe.Set(ctx, KeyTimestamp, now.Format(time.RFC3339), 0)
	version := pipe.Incr(ctx, KeyVersion)
	_, err = pipe.Exec(ctx)
	metrics.ObserveNetworkRequest("redis", "set", KeyCache, start, err)
	if err != nil {
		return 0, fmt.Errorf("запись кэша: %w", err)
	}
	return version.Val(), nil
}

// LoadDraft возвращает черновик формы генерации.
func (s *Redis) LoadDraft(ctx context.Context) (domain.GenerationDraft, error) {
	start := time.Now()
	vals, err := s.client.MGet(ctx, KeyDraftDestination, KeyDraftStartDate, KeyDraftEndDate, KeyDraftContentType, KeyDraftSuggestions).Result()
	metrics.ObserveNetworkRequest("redis", "mget", "draft", start, err)
	if err != nil {
		return domain.GenerationDraft{}, fmt.Errorf("чтение черновика: %w", err)
	}
	draft := domain.GenerationDraft{ContentType: "Blog Post"}
	if v, ok := vals[0].(string); ok {
		draft.Destination = v
	}
	if v, ok := vals[1].(string); ok {
		draft.StartDate = v
	}
	if v, ok := vals[2].(string); ok {
		draft.EndDate = v
	}
	if v, ok := vals[3].(string); ok && v != "" {
		draft.ContentType = v
	}
	if v, ok := vals[4].(string); ok && v != "" {
		_ = json.Unmarshal([]byte(v), &draft.Suggestions)
	}
	return draft, nil
}

// SaveDraft сохраняет черновик формы генерации.
func (s *Redis) SaveDraft(ctx context.Context, draft domain.GenerationDraft) error {
	suggestions, err := json.Marshal(draft.Suggestions)
	if err != nil {
		return fmt.Errorf("сериализация подборки: %w", err)
	}
	start := time.Now()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, KeyDraftDestination, draft.Destination, 0)
	pipe.Set(ctx, KeyDraftStartDate, draft.StartDate, 0)
	pipe.Set(ctx, KeyDraftEndDate, draft.EndDate, 0)
	pipe.Set(ctx, KeyDraftContentType, draft.ContentType, 0)
	pipe.Set(ctx, KeyDraftSuggestions, suggestions, 0)
	_, err = pipe.Exec(ctx)
	metrics.ObserveNetworkRequest("redis", "set", "draft", start, err)
	if err != nil {
		return fmt.Errorf("запись черновика: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (s *Redis) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis недоступен: %w", err)
	}
	return nil
}
