package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"travel-dashboard/internal/adapters/notify"
	"travel-dashboard/internal/adapters/store"
	"travel-dashboard/internal/domain"
)

type fakeAPI struct {
	suggestions []domain.ContentSuggestion
	publishedID string
	places      []domain.PlaceResult
	imageURL    string
	publishErr  error
}

func (f *fakeAPI) GenerateContent(_ context.Context, req domain.GenerateRequest) ([]domain.ContentSuggestion, error) {
	return f.suggestions, nil
}
func (f *fakeAPI) GenerateCustomContent(_ context.Context, req domain.CustomGenerateRequest) (domain.ContentSuggestion, error) {
	return domain.ContentSuggestion{Title: "Custom: " + req.Prompt}, nil
}
func (f *fakeAPI) GenerateImage(context.Context, domain.ImageRequest) (string, error) {
	return f.imageURL, nil
}
func (f *fakeAPI) SearchPlaces(context.Context, string, string) ([]domain.PlaceResult, error) {
	return f.places, nil
}
func (f *fakeAPI) Publish(_ context.Context, req domain.PublishRequest) (domain.PublishedItem, error) {
	if f.publishErr != nil {
		return domain.PublishedItem{}, f.publishErr
	}
	return domain.PublishedItem{ID: f.publishedID, Title: req.Title, Content: req.Content, Destination: req.Destination}, nil
}
func (f *fakeAPI) ListPublished(context.Context) ([]domain.PublishedItem, error) { return nil, nil }
func (f *fakeAPI) UpdatePublished(context.Context, string, domain.PublishRequest) (domain.PublishedItem, error) {
	return domain.PublishedItem{}, errors.New("не используется")
}
func (f *fakeAPI) DeletePublished(context.Context, string) error { return nil }
func (f *fakeAPI) TrackView(context.Context, string) error       { return nil }
func (f *fakeAPI) TrackShare(context.Context, string) error      { return nil }

func newTestService(api *fakeAPI) (*Service, *store.Memory, *[]domain.CacheUpdate) {
	memory := store.NewMemory()
	bus := notify.NewBus()
	var updates []domain.CacheUpdate
	bus.Subscribe(func(update domain.CacheUpdate) {
		updates = append(updates, update)
	})
	return NewService(api, memory, memory, bus, zerolog.Nop()), memory, &updates
}

func TestGenerateSuggestionsRequiresDestination(t *testing.T) {
	service, _, _ := newTestService(&fakeAPI{})
	_, err := service.GenerateSuggestions(context.Background(), domain.GenerateRequest{Destination: "  "})
	if !errors.Is(err, ErrEmptyDestination) {
		t.Fatalf("ожидали ErrEmptyDestination, получили %v", err)
	}
}

func TestGenerateSuggestionsSavesDraft(t *testing.T) {
	api := &fakeAPI{suggestions: []domain.ContentSuggestion{{Title: "Paris in Spring"}}}
	service, _, _ := newTestService(api)

	suggestions, err := service.GenerateSuggestions(context.Background(), domain.GenerateRequest{
		Destination: "Paris",
		StartDate:   "2025-04-01",
		ContentType: "Blog Post",
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("ожидали 1 вариант, получили %d", len(suggestions))
	}

	draft, err := service.Draft(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if draft.Destination != "Paris" || draft.StartDate != "2025-04-01" {
		t.Fatalf("черновик должен сохранять форму: %+v", draft)
	}
	if len(draft.Suggestions) != 1 || draft.Suggestions[0].Title != "Paris in Spring" {
		t.Fatalf("черновик должен сохранять подборку: %+v", draft.Suggestions)
	}
}

func TestDraftDefaults(t *testing.T) {
	service, _, _ := newTestService(&fakeAPI{})
	draft, err := service.Draft(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if draft.ContentType != "Blog Post" {
		t.Fatalf("пустой черновик должен иметь тип Blog Post, получили %q", draft.ContentType)
	}
}

func TestGenerateCustomRequiresPrompt(t *testing.T) {
	service, _, _ := newTestService(&fakeAPI{})
	if _, err := service.GenerateCustom(context.Background(), domain.CustomGenerateRequest{}); err == nil {
		t.Fatalf("ожидали ошибку на пустом промпте")
	}
}

func TestPublishPrependsToCache(t *testing.T) {
	api := &fakeAPI{publishedID: "new-id"}
	service, cache, updates := newTestService(api)
	if _, err := cache.Replace(context.Background(), []domain.PublishedItem{{ID: "old"}}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	item, err := service.Publish(context.Background(), domain.PublishRequest{Title: "Rome at Dawn", Content: "...", Destination: "Rome"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if item.ID != "new-id" {
		t.Fatalf("ожидали id бэкенда, получили %q", item.ID)
	}
	if item.Location != "Rome" {
		t.Fatalf("публикация должна нормализоваться, получили %q", item.Location)
	}

	snap, _ := cache.Snapshot(context.Background())
	if len(snap.Items) != 2 || snap.Items[0].ID != "new-id" {
		t.Fatalf("новая публикация должна стоять первой: %v", snap.Items)
	}
	last := (*updates)[len(*updates)-1]
	if last.Reason != "publish" {
		t.Fatalf("ожидали сигнал publish, получили %s", last.Reason)
	}
}

func TestPublishWithoutBackendIDGetsUUID(t *testing.T) {
	service, cache, _ := newTestService(&fakeAPI{})
	item, err := service.Publish(context.Background(), domain.PublishRequest{Title: "Oslo", Content: "..."})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if item.ID == "" {
		t.Fatalf("id должен генерироваться локально, если бэкенд его не выдал")
	}
	snap, _ := cache.Snapshot(context.Background())
	if snap.Items[0].ID != item.ID {
		t.Fatalf("кэш должен содержать тот же id")
	}
}

func TestPublishBackendFailureLeavesCache(t *testing.T) {
	api := &fakeAPI{publishErr: errors.New("бэкенд недоступен")}
	service, cache, updates := newTestService(api)

	if _, err := service.Publish(context.Background(), domain.PublishRequest{Title: "X", Content: "..."}); err == nil {
		t.Fatalf("ожидали ошибку публикации")
	}
	snap, _ := cache.Snapshot(context.Background())
	if len(snap.Items) != 0 {
		t.Fatalf("кэш не должен меняться при ошибке бэкенда")
	}
	if len(*updates) != 0 {
		t.Fatalf("сигналов быть не должно")
	}
}
