package store

import (
	"encoding/json"
	"errors"

	"travel-dashboard/internal/domain"
)

// Ключи хранилища. Имена зафиксированы: их читают дампы и миграции,
// менять нельзя.
const (
	KeyCache     = "published_content_cache"
	KeyTimestamp = "published_content_timestamp"
	KeyVersion   = "published_content_version"

	KeyDraftDestination = "contentGen_destination"
	KeyDraftStartDate   = "contentGen_startDate"
	KeyDraftEndDate     = "contentGen_endDate"
	KeyDraftContentType = "contentGen_contentType"
	KeyDraftSuggestions = "contentGen_suggestions"
)

// ErrNotFound возвращается, когда материала с таким id нет в кэше.
var ErrNotFound = errors.New("материал не найден в кэше")

// decodeItems разбирает JSON кэша. Битый JSON трактуется как пустой кэш.
func decodeItems(raw []byte) []domain.PublishedItem {
	if len(raw) == 0 {
		return nil
	}
	var items []domain.PublishedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func prependItem(items []domain.PublishedItem, item domain.PublishedItem) []domain.PublishedItem {
	out := make([]domain.PublishedItem, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func updateItem(items []domain.PublishedItem, id string, mutate func(*domain.PublishedItem)) ([]domain.PublishedItem, error) {
	for i := range items {
		if items[i].ID == id {
			mutate(&items[i])
			return items, nil
		}
	}
	return nil, ErrNotFound
}

func removeItem(items []domain.PublishedItem, id string) ([]domain.PublishedItem, error) {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i:i], items[i+1:]...), nil
		}
	}
	return nil, ErrNotFound
}
