package library

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
	published []domain.PublishedItem
	updated   domain.PublishedItem
	listErr   error

	views   []string
	shares  []string
	deleted []string
}

func (f *fakeAPI) GenerateContent(context.Context, domain.GenerateRequest) ([]domain.ContentSuggestion, error) {
	return nil, errors.New("не используется")
}
func (f *fakeAPI) GenerateCustomContent(context.Context, domain.CustomGenerateRequest) (domain.ContentSuggestion, error) {
	return domain.ContentSuggestion{}, errors.New("не используется")
}
func (f *fakeAPI) GenerateImage(context.Context, domain.ImageRequest) (string, error) {
	return "", errors.New("не используется")
}
func (f *fakeAPI) SearchPlaces(context.Context, string, string) ([]domain.PlaceResult, error) {
	return nil, errors.New("не используется")
}
func (f *fakeAPI) Publish(_ context.Context, req domain.PublishRequest) (domain.PublishedItem, error) {
	return domain.PublishedItem{Title: req.Title, Content: req.Content, Type: req.Type, Tags: req.Tags, Destination: req.Destination}, nil
}
func (f *fakeAPI) ListPublished(context.Context) ([]domain.PublishedItem, error) {
	return f.published, f.listErr
}
func (f *fakeAPI) UpdatePublished(_ context.Context, id string, req domain.PublishRequest) (domain.PublishedItem, error) {
	updated := f.updated
	updated.ID = id
	return updated, nil
}
func (f *fakeAPI) DeletePublished(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeAPI) TrackView(_ context.Context, id string) error {
	f.views = append(f.views, id)
	return nil
}
func (f *fakeAPI) TrackShare(_ context.Context, id string) error {
	f.shares = append(f.shares, id)
	return nil
}

func newTestService(api *fakeAPI) (*Service, *store.Memory, *[]domain.CacheUpdate) {
	cache := store.NewMemory()
	bus := notify.NewBus()
	var updates []domain.CacheUpdate
	bus.Subscribe(func(update domain.CacheUpdate) {
		updates = append(updates, update)
	})
	return NewService(api, cache, bus, zerolog.Nop()), cache, &updates
}

func TestSyncReplacesCacheAndSignals(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{
		{ID: "1", Title: "Paris Guide", Destination: "Paris"},
		{ID: "2", Title: "No Place"},
	}}
	service, cache, updates := newTestService(api)

	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	snap, _ := cache.Snapshot(context.Background())
	if len(snap.Items) != 2 {
		t.Fatalf("ожидали 2 материала, получили %d", len(snap.Items))
	}
	if snap.Items[0].Location != "Paris" {
		t.Fatalf("location должен наследоваться от destination, получили %q", snap.Items[0].Location)
	}
	if snap.Items[1].Location != domain.LocationPlaceholder {
		t.Fatalf("без локации должен стоять заполнитель, получили %q", snap.Items[1].Location)
	}
	if snap.Items[0].Status != domain.StatusPublished {
		t.Fatalf("статус по умолчанию Published, получили %q", snap.Items[0].Status)
	}
	if len(*updates) != 1 || (*updates)[0].Reason != "sync" {
		t.Fatalf("ожидали один сигнал sync, получили %v", *updates)
	}
}

func TestSyncUpstreamFailureLeavesCache(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{{ID: "1", Title: "Old"}}}
	service, cache, _ := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	api.listErr = errors.New("бэкенд недоступен")
	if err := service.Sync(context.Background()); err == nil {
		t.Fatalf("ожидали ошибку синхронизации")
	}
	snap, _ := cache.Snapshot(context.Background())
	if len(snap.Items) != 1 {
		t.Fatalf("кэш не должен затираться при ошибке, получили %d материалов", len(snap.Items))
	}
}

func TestListFilters(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{
		{ID: "1", Title: "Paris Food Tour", Type: "Blog Post", Location: "Paris", Tags: []string{"food"}},
		{ID: "2", Title: "Rome at Night", Type: "Instagram Post", Location: "Rome", Tags: []string{"night"}},
	}}
	service, _, _ := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	items, err := service.List(context.Background(), Filter{Query: "paris"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("поиск по подстроке заголовка: получили %v", items)
	}

	items, _ = service.List(context.Background(), Filter{Type: "Instagram Post"})
	if len(items) != 1 || items[0].ID != "2" {
		t.Fatalf("фильтр по типу: получили %v", items)
	}

	items, _ = service.List(context.Background(), Filter{Theme: "food"})
	if len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("фильтр по теме: получили %v", items)
	}

	items, _ = service.List(context.Background(), Filter{})
	if len(items) != 2 {
		t.Fatalf("пустой фильтр возвращает всё: получили %d", len(items))
	}
}

func TestTrackViewBumpsCounterAndSignals(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{{ID: "1", Title: "Paris", Views: 10}}}
	service, cache, updates := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if err := service.TrackView(context.Background(), "1"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	snap, _ := cache.Snapshot(context.Background())
	if snap.Items[0].Views != 11 {
		t.Fatalf("ожидали 11 просмотров, получили %d", snap.Items[0].Views)
	}
	if len(api.views) != 1 || api.views[0] != "1" {
		t.Fatalf("просмотр должен уходить на бэкенд")
	}
	last := (*updates)[len(*updates)-1]
	if last.Reason != "view" {
		t.Fatalf("ожидали сигнал view, получили %s", last.Reason)
	}
}

func TestTrackShareBumpsCounter(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{{ID: "1", Shares: 3}}}
	service, cache, _ := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if err := service.TrackShare(context.Background(), "1"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	snap, _ := cache.Snapshot(context.Background())
	if snap.Items[0].Shares != 4 {
		t.Fatalf("ожидали 4 репоста, получили %d", snap.Items[0].Shares)
	}
}

func TestEditOverwritesItem(t *testing.T) {
	api := &fakeAPI{
		published: []domain.PublishedItem{{ID: "1", Title: "Old Title", Views: 5}},
		updated:   domain.PublishedItem{Title: "New Title", Destination: "Rome"},
	}
	service, cache, updates := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	item, err := service.Edit(context.Background(), "1", domain.PublishRequest{Title: "New Title"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if item.ID != "1" || item.Title != "New Title" {
		t.Fatalf("неверный результат правки: %+v", item)
	}
	snap, _ := cache.Snapshot(context.Background())
	if snap.Items[0].Title != "New Title" || snap.Items[0].Location != "Rome" {
		t.Fatalf("кэш должен содержать нормализованную правку: %+v", snap.Items[0])
	}
	last := (*updates)[len(*updates)-1]
	if last.Reason != "edit" {
		t.Fatalf("ожидали сигнал edit, получили %s", last.Reason)
	}
}

func TestDeleteRemovesFromCache(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{{ID: "1"}, {ID: "2"}}}
	service, cache, updates := newTestService(api)
	if err := service.Sync(context.Background()); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if err := service.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	snap, _ := cache.Snapshot(context.Background())
	if len(snap.Items) != 1 || snap.Items[0].ID != "2" {
		t.Fatalf("материал должен исчезнуть из кэша: %v", snap.Items)
	}
	if len(api.deleted) != 1 {
		t.Fatalf("удаление должно уходить на бэкенд")
	}
	last := (*updates)[len(*updates)-1]
	if last.Reason != "delete" {
		t.Fatalf("ожидали сигнал delete, получили %s", last.Reason)
	}
}

func TestTrackViewMissingItem(t *testing.T) {
	api := &fakeAPI{}
	service, _, _ := newTestService(api)
	err := service.TrackView(context.Background(), "нет такого")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
}

func TestVersionGrowsMonotonically(t *testing.T) {
	api := &fakeAPI{published: []domain.PublishedItem{{ID: "1"}}}
	service, cache, updates := newTestService(api)
	for i := 0; i < 3; i++ {
		if err := service.Sync(context.Background()); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}
	snap, _ := cache.Snapshot(context.Background())
	if snap.Version != 3 {
		t.Fatalf("ожидали версию 3, получили %d", snap.Version)
	}
	for i := 1; i < len(*updates); i++ {
		if (*updates)[i].Version <= (*updates)[i-1].Version {
			t.Fatalf("версии в сигналах должны расти: %v", *updates)
		}
	}
}
