package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
)

// ErrNotFound возвращается, когда материала нет ни на бэкенде, ни в кэше.
var ErrNotFound = errors.New("материал не найден")

// Service отвечает за историю контента: синхронизацию кэша с бэкендом
// и операции просмотра, правки, репоста и удаления. Бэкенд авторитетен,
// кэш зеркалирует его и шлёт сигнал после каждой мутации.
type Service struct {
	api      domain.ContentAPI
	cache    domain.CacheStore
	notifier domain.Notifier
	log      zerolog.Logger
}

// NewService создаёт сервис истории контента.
func NewService(api domain.ContentAPI, cache domain.CacheStore, notifier domain.Notifier, logger zerolog.Logger) *Service {
	return &Service{api: api, cache: cache, notifier: notifier, log: logger}
}

// Normalize приводит материал бэкенда к форме кэша: статус по умолчанию
// Published, локация с fallback на destination и заполнителем «—».
func Normalize(item domain.PublishedItem) domain.PublishedItem {
	if item.Status == "" {
		item.Status = domain.StatusPublished
	}
	if strings.TrimSpace(item.Location) == "" {
		if strings.TrimSpace(item.Destination) != "" {
			item.Location = item.Destination
		} else {
			item.Location = domain.LocationPlaceholder
		}
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

// Sync перечитывает опубликованное с бэкенда и перезаписывает кэш.
func (s *Service) Sync(ctx context.Context) error {
	items, err := s.api.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("загрузка опубликованного: %w", err)
	}
	normalized := make([]domain.PublishedItem, 0, len(items))
	for _, item := range items {
		normalized = append(normalized, Normalize(item))
	}
	version, err := s.cache.Replace(ctx, normalized)
	if err != nil {
		return err
	}
	s.signal(ctx, version, "sync")
	return nil
}

// Filter условия отбора материалов в истории.
type Filter struct {
	Query    string
	Type     string
	Status   string
	Location string
	Theme    string
}

func (f Filter) matches(item domain.PublishedItem) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(f.Query)) {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.Location != "" && !strings.Contains(item.Location, f.Location) {
		return false
	}
	if f.Theme != "" {
		found := false
		for _, tag := range item.Tags {
			if tag == f.Theme {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List возвращает материалы кэша, отфильтрованные по условиям.
func (s *Service) List(ctx context.Context, filter Filter) ([]domain.PublishedItem, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublishedItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		if filter.matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Edit обновляет материал на бэкенде и правит его в кэше на месте.
func (s *Service) Edit(ctx context.Context, id string, req domain.PublishRequest) (domain.PublishedItem, error) {
	updated, err := s.api.UpdatePublished(ctx, id, req)
	if err != nil {
		return domain.PublishedItem{}, fmt.Errorf("правка материала: %w", err)
	}
	updated = Normalize(updated)
	if updated.ID == "" {
		updated.ID = id
	}
	version, err := s.cache.Update(ctx, id, func(item *domain.PublishedItem) {
		*item = updated
	})
	if err != nil {
		return domain.PublishedItem{}, err
	}
	s.signal(ctx, version, "edit")
	return updated, nil
}

// TrackView фиксирует просмотр на бэкенде и поднимает счётчик в кэше.
func (s *Service) TrackView(ctx context.Context, id string) error {
	if err := s.api.TrackView(ctx, id); err != nil {
		return fmt.Errorf("учёт просмотра: %w", err)
	}
	version, err := s.cache.Update(ctx, id, func(item *domain.PublishedItem) {
		item.Views++
	})
	if err != nil {
		return err
	}
	s.signal(ctx, version, "view")
	return nil
}

// TrackShare фиксирует репост на бэкенде и поднимает счётчик в кэше.
func (s *Service) TrackShare(ctx context.Context, id string) error {
	if err := s.api.TrackShare(ctx, id); err != nil {
		return fmt.Errorf("учёт репоста: %w", err)
	}
	version, err := s.cache.Update(ctx, id, func(item *domain.PublishedItem) {
		item.Shares++
	})
	if err != nil {
		return err
	}
	s.signal(ctx, version, "share")
	return nil
}

// Delete удаляет материал на бэкенде и выкидывает его из кэша.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.DeletePublished(ctx, id); err != nil {
		return fmt.Errorf("удаление материала: %w", err)
	}
	version, err := s.cache.Remove(ctx, id)
	if err != nil {
		return err
	}
	s.signal(ctx, version, "delete")
	return nil
}

func (s *Service) signal(ctx context.Context, version int64, reason string) {
	metrics.IncCacheMutation(reason)
	update := domain.CacheUpdate{Version: version, ChangedAt: time.Now().UTC(), Reason: reason}
	if err := s.notifier.Publish(ctx, update); err != nil {
		s.log.Warn().Err(err).Str("reason", reason).Msg("история: не удалось разослать сигнал")
	}
}
