package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"travel-dashboard/internal/domain"
	"travel-dashboard/internal/infra/metrics"
	"travel-dashboard/internal/usecase/library"
)

// ErrEmptyDestination возвращается, если направление не задано.
var ErrEmptyDestination = errors.New("направление не задано")

// Service ведёт воркфлоу генерации: черновик формы, подборки от
// генератора и публикацию с зеркалированием в кэш.
type Service struct {
	api      domain.ContentAPI
	cache    domain.CacheStore
	drafts   domain.DraftStore
	notifier domain.Notifier
	log      zerolog.Logger
}

// NewService создаёт сервис генерации.
func NewService(api domain.ContentAPI, cache domain.CacheStore, drafts domain.DraftStore, notifier domain.Notifier, logger zerolog.Logger) *Service {
	return &Service{api: api, cache: cache, drafts: drafts, notifier: notifier, log: logger}
}

// Draft возвращает сохранённый черновик формы.
func (s *Service) Draft(ctx context.Context) (domain.GenerationDraft, error) {
	return s.drafts.LoadDraft(ctx)
}

// SaveDraft сохраняет черновик формы.
func (s *Service) SaveDraft(ctx context.Context, draft domain.GenerationDraft) error {
	return s.drafts.SaveDraft(ctx, draft)
}

// GenerateSuggestions запрашивает подборку и сохраняет её в черновик,
// чтобы форма переживала перезапуск.
func (s *Service) GenerateSuggestions(ctx context.Context, req domain.GenerateRequest) ([]domain.ContentSuggestion, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, ErrEmptyDestination
	}
	suggestions, err := s.api.GenerateContent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("генерация подборки: %w", err)
	}
	draft := domain.GenerationDraft{
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ContentType: req.ContentType,
		Suggestions: suggestions,
	}
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		s.log.Warn().Err(err).Msg("генерация: черновик не сохранился")
	}
	return suggestions, nil
}

// GenerateCustom запрашивает генерацию по произвольному промпту.
func (s *Service) GenerateCustom(ctx context.Context, req domain.CustomGenerateRequest) (domain.ContentSuggestion, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.ContentSuggestion{}, errors.New("промпт пуст")
	}
	suggestion, err := s.api.GenerateCustomContent(ctx, req)
	if err != nil {
		return domain.ContentSuggestion{}, fmt.Errorf("генерация по промпту: %w", err)
	}
	return suggestion, nil
}

// GenerateImage запрашивает обложку для материала.
func (s *Service) GenerateImage(ctx context.Context, req domain.ImageRequest) (string, error) {
	imageURL, err := s.api.GenerateImage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("генерация обложки: %w", err)
	}
	return imageURL, nil
}

// SearchPlaces ищет направления по свободному тексту.
func (s *Service) SearchPlaces(ctx context.Context, query, language string) ([]domain.PlaceResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("пустой поисковый запрос")
	}
	places, err := s.api.SearchPlaces(ctx, query, language)
	if err != nil {
		return nil, fmt.Errorf("поиск мест: %w", err)
	}
	return places, nil
}

// Publish публикует материал на бэкенде и добавляет созданную запись в
// начало кэша: сразу после публикации она — первый элемент снимка.
func (s *Service) Publish(ctx context.Context, req domain.PublishRequest) (domain.PublishedItem, error) {
	item, err := s.api.Publish(ctx, req)
	if err != nil {
		return domain.PublishedItem{}, fmt.Errorf("публикация: %w", err)
	}
	item = library.Normalize(item)
	if item.ID == "" {
		// Бэкенд обязан выдавать id; страхуемся, чтобы кэш не развалился.
		item.ID = uuid.NewString()
	}
	version, err := s.cache.Prepend(ctx, item)
	if err != nil {
		return domain.PublishedItem{}, err
	}
	metrics.IncCacheMutation("publish")
	update := domain.CacheUpdate{Version: version, ChangedAt: time.Now().UTC(), Reason: "publish"}
	if err := s.notifier.Publish(ctx, update); err != nil {
		s.log.Warn().Err(err).Msg("публикация: не удалось разослать сигнал")
	}
	return item, nil
}
