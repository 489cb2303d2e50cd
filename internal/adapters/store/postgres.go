package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// Postgres реализует domain.CacheStore и domain.DraftStore поверх одной
// kv-таблицы. Значение кэша хранится одной строкой и перезаписывается
// целиком, как и в Redis-варианте.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.CacheStore = (*Postgres)(nil)
	_ domain.DraftStore = (*Postgres)(nil)
)

// NewPostgres создаёт хранилище кэша.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema создаёт kv-таблицу, если её ещё нет.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	start := time.Now()
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS dashboard_kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`)
	metrics.ObserveNetworkRequest("postgres", "ensure_schema", "dashboard_kv", start, err)
	if err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}
	return nil
}

func (s *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func (s *Postgres) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.connCtx(ctx)
	defer cancel()
	start := time.Now()
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM dashboard_kv WHERE key = $1`, key).Scan(&value)
	metrics.ObserveNetworkRequest("postgres", "kv_get", key, start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("чтение ключа %s: %w", key, err)
	}
	return value, nil
}

func (s *Postgres) set(ctx context.Context, key, value string) error {
	ctx, cancel := s.connCtx(ctx)
	defer cancel()
	start := time.Now()
	_, err := s.pool.Exec(ctx, `
INSERT INTO dashboard_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`, key, value)
	metrics.ObserveNetworkRequest("postgres", "kv_set", key, start, err)
	if err != nil {
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}
	return nil
}

// Snapshot возвращает снимок кэша вместе с версией.
func (s *Postgres) Snapshot(ctx context.Context) (domain.CacheSnapshot, error) {
	raw, err := s.get(ctx, KeyCache)
	if err != nil {
		return domain.CacheSnapshot{}, err
	}
	rawVersion, err := s.get(ctx, KeyVersion)
	if err != nil {
		return domain.CacheSnapshot{}, err
	}
	version, _ := strconv.ParseInt(rawVersion, 10, 64)
	return domain.CacheSnapshot{
		Items:   decodeItems([]byte(raw)),
		Version: version,
		TakenAt: time.Now().UTC(),
	}, nil
}

// Replace перезаписывает кэш целиком.
func (s *Postgres) Replace(ctx context.Context, items []domain.PublishedItem) (int64, error) {
	return s.write(ctx, items)
}

// Prepend добавляет материал в начало кэша.
func (s *Postgres) Prepend(ctx context.Context, item domain.PublishedItem) (int64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, prependItem(snap.Items, item))
}

// Update меняет материал на месте.
func (s *Postgres) Update(ctx context.Context, id string, mutate func(*domain.PublishedItem)) (int64, error) {
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
func (s *Postgres) Remove(ctx context.Context, id string) (int64, error) {
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

func (s *Postgres) write(ctx context.Context, items []domain.PublishedItem) (int64, error) {
	if items == nil {
		items = []domain.PublishedItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("сериализация кэша: %w", err)
	}
	ctx, cancel := s.connCtx(ctx)
	defer cancel()
	start := time.Now()
	var version int64
	err = s.pool.QueryRow(ctx, `
WITH cache AS (
    INSERT INTO dashboard_kv (key, value, updated_at) VALUES ($1, $2, now())
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
), ts AS (
    INSERT INTO dashboard_kv (key, value, updated_at) VALUES ($3, $4, now())
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
)
INSERT INTO dashboard_kv (key, value, updated_at) VALUES ($5, '1', now())
ON CONFLICT (key) DO UPDATE SET value = (dashboard_kv.value::bigint + 1)::text, updated_at = now()
RETURNING value::bigint
`, KeyCache, string(payload), KeyTimestamp, time.Now().UTC().Format(time.RFC3339), KeyVersion).Scan(&version)
	metrics.ObserveNetworkRequest("postgres", "kv_write", KeyCache, start, err)
	if err != nil {
		return 0, fmt.Errorf("запись кэша: %w", err)
	}
	return version, nil
}

// LoadDraft возвращает черновик формы генерации.
func (s *Postgres) LoadDraft(ctx context.Context) (domain.GenerationDraft, error) {
	draft := domain.GenerationDraft{ContentType: "Blog Post"}
	var err error
	if draft.Destination, err = s.get(ctx, KeyDraftDestination); err != nil {
		return domain.GenerationDraft{}, err
	}
	if draft.StartDate, err = s.get(ctx, KeyDraftStartDate); err != nil {
		return domain.GenerationDraft{}, err
	}
	if draft.EndDate, err = s.get(ctx, KeyDraftEndDate); err != nil {
		return domain.GenerationDraft{}, err
	}
	contentType, err := s.get(ctx, KeyDraftContentType)
	if err != nil {
		return domain.GenerationDraft{}, err
	}
	if contentType != "" {
		draft.ContentType = contentType
	}
	rawSuggestions, err := s.get(ctx, KeyDraftSuggestions)
	if err != nil {
		return domain.GenerationDraft{}, err
	}
	if rawSuggestions != "" {
		_ = json.Unmarshal([]byte(rawSuggestions), &draft.Suggestions)
	}
	return draft, nil
}

// SaveDraft сохраняет черновик формы генерации.
func (s *Postgres) SaveDraft(ctx context.Context, draft domain.GenerationDraft) error {
	suggestions, err := json.Marshal(draft.Suggestions)
	if err != nil {
		return fmt.Errorf("сериализация подборки: %w", err)
	}
	pairs := [][2]string{
		{KeyDraftDestination, draft.Destination},
		{KeyDraftStartDate, draft.StartDate},
		{KeyDraftEndDate, draft.EndDate},
		{KeyDraftContentType, draft.ContentType},
		{KeyDraftSuggestions, string(suggestions)},
	}
	for _, pair := range pairs {
		if err := s.set(ctx, pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}
