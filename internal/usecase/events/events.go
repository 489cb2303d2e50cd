package events

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"travel-dashboard/internal/domain"
)

// DefaultMax ограничивает количество событий на дашборде.
const DefaultMax = 10

var articleRegex = regexp.MustCompile(`(?i)^(The|A|An)\s+`)

// categoryRule сопоставляет ключевые слова в тегах с категорией события.
type categoryRule struct {
	keywords []string
	category string
}

// Таблицы подобраны под редакционные рубрики: порядок имеет значение,
// выигрывает первое совпадение.
var blogCategoryRules = []categoryRule{
	{keywords: []string{"food", "restaurant", "culinary"}, category: "Culinary"},
	{keywords: []string{"music", "concert", "festival"}, category: "Music"},
	{keywords: []string{"art", "museum", "gallery"}, category: "Cultural"},
	{keywords: []string{"sport", "fitness", "outdoor"}, category: "Sports"},
}

var socialCategoryRules = []categoryRule{
	{keywords: []string{"food", "restaurant"}, category: "Culinary"},
	{keywords: []string{"music", "concert"}, category: "Music"},
}

func matchCategory(rules []categoryRule, tagText string) (string, bool) {
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(tagText, keyword) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// Category определяет категорию события по типу контента и тегам.
func Category(contentType string, tags []string) string {
	tagText := strings.ToLower(strings.Join(tags, " "))
	lowerType := strings.ToLower(contentType)

	if strings.Contains(lowerType, "blog") {
		if category, ok := matchCategory(blogCategoryRules, tagText); ok {
			return category
		}
		return "Cultural"
	}
	if strings.Contains(lowerType, "instagram") || strings.Contains(lowerType, "facebook") {
		if category, ok := matchCategory(socialCategoryRules, tagText); ok {
			return category
		}
		return "Social"
	}
	return "Cultural"
}

// EventName строит имя события из заголовка, срезая ведущий артикль.
func EventName(title string) string {
	return strings.TrimSpace(articleRegex.ReplaceAllString(title, ""))
}

// attendeeEstimate задаёт множитель и нижнюю границу оценки аудитории
// для типа контента.
type attendeeEstimate struct {
	typeKeyword string
	factor      float64
	floor       int
}

var attendeeEstimates = []attendeeEstimate{
	{typeKeyword: "blog", factor: 0.1, floor: 100},
	{typeKeyword: "instagram", factor: 0.05, floor: 50},
	{typeKeyword: "facebook", factor: 0.08, floor: 200},
}

// Attendees оценивает аудиторию события по типу контента и просмотрам.
func Attendees(contentType string, views int) string {
	lowerType := strings.ToLower(contentType)
	for _, est := range attendeeEstimates {
		if !strings.Contains(lowerType, est.typeKeyword) {
			continue
		}
		estimated := int(float64(views) * est.factor)
		if estimated < est.floor {
			estimated = est.floor
		}
		if estimated >= 1000 {
			return fmt.Sprintf("%dK+ expected", estimated/1000)
		}
		return fmt.Sprintf("%d+ expected", estimated)
	}
	return "500+ expected"
}

// Derive превращает материалы с локацией в синтетические события,
// отсортированные от свежих к старым. Любой сбой деградирует до
// пустого списка, ошибки наружу не выходят.
func Derive(items []domain.PublishedItem, max int) (events []domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
		}
	}()
	if max <= 0 {
		max = DefaultMax
	}
	if len(items) == 0 {
		return nil
	}

	located := make([]domain.PublishedItem, 0, len(items))
	for _, item := range items {
		if item.Place() != "" {
			located = append(located, item)
		}
	}

	// Нераспарсенные даты сравниваются как равные, порядок стабильный.
	sort.SliceStable(located, func(i, j int) bool {
		di, iOK := ParseContentDate(located[i].Date)
		dj, jOK := ParseContentDate(located[j].Date)
		if !iOK || !jOK {
			return false
		}
		return di.After(dj)
	})

	if len(located) > max {
		located = located[:max]
	}
	events = make([]domain.Event, 0, len(located))
	for _, item := range located {
		events = append(events, domain.Event{
			Name:      EventName(item.Title),
			Location:  item.Place(),
			Date:      FormatEventDate(item.Date),
			Attendees: Attendees(item.Type, item.Views),
			Category:  Category(item.Type, item.Tags),
		})
	}
	return events
}
