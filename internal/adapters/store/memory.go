package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"travel-dashboard/internal/domain"
)

// Memory реализует domain.CacheStore и domain.DraftStore в памяти процесса.
// Используется в тестах и при запуске без внешнего хранилища.
type Memory struct {
	mu       sync.Mutex
	raw      []byte
	version  int64
	draft    domain.GenerationDraft
	hasDraft bool
}

var (
	_ domain.CacheStore = (*Memory)(nil)
	_ domain.DraftStore = (*Memory)(nil)
)

// NewMemory создаёт хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{}
}

// Snapshot возвращает снимок кэша вместе с версией.
func (s *Memory) Snapshot(ctx context.Context) (domain.CacheSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CacheSnapshot{
		Items:   decodeItems(s.raw),
		Version: s.version,
		TakenAt: time.Now().UTC(),
	}, nil
}

// Replace перезаписывает кэш целиком.
func (s *Memory) Replace(ctx context.Context, items []domain.PublishedItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(items)
}

// Prepend добавляет материал в начало кэша.
func (s *Memory) Prepend(ctx context.Context, item domain.PublishedItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(prependItem(decodeItems(s.raw), item))
}

// Update меняет материал на месте.
func (s *Memory) Update(ctx context.Context, id string, mutate func(*domain.PublishedItem)) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := updateItem(decodeItems(s.raw), id, mutate)
	if err != nil {
		return 0, err
	}
	return s.write(items)
}

// Remove удаляет материал из кэша.
func (s *Memory) Remove(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := removeItem(decodeItems(s.raw), id)
	if err != nil {
		return 0, err
	}
	return s.write(items)
}

// SetRaw подкладывает сырой JSON кэша. Нужен в тестах на битые данные.
func (s *Memory) SetRaw(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.version++
}

func (s *Memory) write(items []domain.PublishedItem) (int64, error) {
	if items == nil {
		items = []domain.PublishedItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return 0, err
	}
	s.raw = payload
	s.version++
	return s.version, nil
}

// LoadDraft возвращает черновик формы генерации.
func (s *Memory) LoadDraft(ctx context.Context) (domain.GenerationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDraft {
		return domain.GenerationDraft{ContentType: "Blog Post"}, nil
	}
	return s.draft, nil
}

// SaveDraft сохраняет черновик формы генерации.
func (s *Memory) SaveDraft(ctx context.Context, draft domain.GenerationDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
	s.hasDraft = true
	return nil
}
