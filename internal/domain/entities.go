package domain

import (
	"strings"
	"time"
)

// LocationPlaceholder обозначает отсутствующую локацию в кэше.
const LocationPlaceholder = "—"

// Статусы опубликованного контента.
const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
	StatusScheduled = "Scheduled"
	StatusArchived  = "Archived"
)

// PublishedItem описывает опубликованный материал в локальном кэше.
// Источником истины остаётся контент-бэкенд, кэш лишь зеркалирует его.
type PublishedItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Type           string   `json:"type"`
	Tags           []string `json:"tags"`
	Location       string   `json:"location,omitempty"`
	Destination    string   `json:"destination,omitempty"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Status         string   `json:"status"`
	Views          int      `json:"views"`
	Shares         int      `json:"shares"`
	EngagementRate float64  `json:"engagement_rate"`
	GrowthRate     float64  `json:"growth_rate"`
	ReadingTime    string   `json:"reading_time,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
}

// Place возвращает локацию материала: location, затем destination,
// иначе пусто. Заполнитель «—» считается отсутствием локации.
func (p PublishedItem) Place() string {
	if loc := strings.TrimSpace(p.Location); loc != "" && loc != LocationPlaceholder {
		return loc
	}
	if dest := strings.TrimSpace(p.Destination); dest != "" && dest != LocationPlaceholder {
		return dest
	}
	return ""
}

// CacheSnapshot содержит содержимое кэша вместе с версией на момент чтения.
type CacheSnapshot struct {
	Items   []PublishedItem
	Version int64
	TakenAt time.Time
}

// CacheUpdate описывает событие изменения кэша.
type CacheUpdate struct {
	Version   int64     `json:"version"`
	ChangedAt time.Time `json:"changed_at"`
	Reason    string    `json:"reason"`
}

// QuickStat одна позиция краткой статистики в сайдбаре.
type QuickStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Event синтетическое событие, выведенное из опубликованного материала.
type Event struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Date      string `json:"date"`
	Attendees string `json:"attendees"`
	Category  string `json:"category"`
}

// Landmark достопримечательность, выведенная из опубликованного материала.
type Landmark struct {
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	AnnualVisitors string  `json:"annualVisitors"`
	Rating         float64 `json:"rating"`
}

// WeatherInfo погода по одному из направлений кэша.
type WeatherInfo struct {
	City        string `json:"city"`
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	Change      string `json:"change"`
	IsPositive  bool   `json:"isPositive"`
}

// MetricCard карточка метрики на дашборде.
type MetricCard struct {
	Title      string `json:"title"`
	Value      string `json:"value"`
	Change     string `json:"change"`
	IsPositive bool   `json:"isPositive"`
}

// DashboardView агрегирует все производные представления за один проход.
type DashboardView struct {
	Cards      []MetricCard  `json:"cards"`
	QuickStats []QuickStat   `json:"quick_stats"`
	Events     []Event       `json:"events"`
	Landmarks  []Landmark    `json:"landmarks"`
	Weather    []WeatherInfo `json:"weather"`
	Version    int64         `json:"version"`
	ComputedAt time.Time     `json:"computed_at"`
}

// ResolvedCity результат геокодирования свободного текста места.
type ResolvedCity struct {
	Display   string
	Latitude  float64
	Longitude float64
}

// WeatherReport текущая температура и почасовой ряд за прошедшие сутки.
type WeatherReport struct {
	HasCurrent  bool
	Current     float64
	HourlyTemps []float64
}

// GenerationDraft черновик формы генерации контента.
type GenerationDraft struct {
	Destination string              `json:"destination"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	ContentType string              `json:"content_type"`
	Suggestions []ContentSuggestion `json:"suggestions,omitempty"`
}

// ContentSuggestion вариант контента от генератора.
type ContentSuggestion struct {
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	Type             string   `json:"type"`
	ReadingTime      string   `json:"reading_time"`
	Quality          string   `json:"quality"`
	Tags             []string `json:"tags"`
	Highlights       []string `json:"highlights,omitempty"`
	Neighborhoods    []string `json:"neighborhoods,omitempty"`
	RecommendedSpots []string `json:"recommended_spots,omitempty"`
	PriceRange       string   `json:"price_range,omitempty"`
	BestTimes        string   `json:"best_times,omitempty"`
	Cautions         []string `json:"cautions,omitempty"`
}

// PlaceResult найденное место из поиска по каталогу бэкенда.
type PlaceResult struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Country     string   `json:"country"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}
