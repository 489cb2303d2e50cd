package landmarks

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"travel-dashboard/internal/domain"
)

// DefaultMax ограничивает количество достопримечательностей на дашборде.
const DefaultMax = 10

var articleRegex = regexp.MustCompile(`(?i)^(The|A|An)\s+`)

// EngagementScore композитная метрика популярности материала, по ней
// сортируются достопримечательности.
func EngagementScore(item domain.PublishedItem) float64 {
	return float64(item.Views) + float64(item.Shares)*10 + item.EngagementRate*100
}

// LandmarkName строит имя: заголовок, если он сам звучит как имя
// достопримечательности, иначе первый сегмент локации плюс «Landmark».
func LandmarkName(title, location string) string {
	cleanTitle := strings.TrimSpace(articleRegex.ReplaceAllString(title, ""))
	if titleSoundsLikeLandmark(cleanTitle) {
		return cleanTitle
	}
	locationName := strings.TrimSpace(strings.SplitN(location, ",", 2)[0])
	return locationName + " Landmark"
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Description берёт первое содержательное предложение текста,
// иначе строит шаблонную фразу от заголовка.
func Description(content, title string) string {
	for _, sentence := range sentenceSplit.Split(content, -1) {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) > 20 {
			return trimmed + "."
		}
	}
	return "Historic " + strings.ToLower(title) + " with cultural significance."
}

// visitorEstimate задаёт множитель и нижнюю границу оценки посещаемости
// для типа контента.
type visitorEstimate struct {
	typeKeyword string
	factor      float64
	floor       int
}

var visitorEstimates = []visitorEstimate{
	{typeKeyword: "blog", factor: 1000, floor: 100000},
	{typeKeyword: "instagram", factor: 500, floor: 50000},
	{typeKeyword: "facebook", factor: 800, floor: 200000},
}

// AnnualVisitors оценивает годовую посещаемость по вовлечённости.
func AnnualVisitors(contentType string, views, shares int) string {
	base := float64(views + shares*10)
	lowerType := strings.ToLower(contentType)
	for _, est := range visitorEstimates {
		if !strings.Contains(lowerType, est.typeKeyword) {
			continue
		}
		estimated := int(base * est.factor)
		if estimated < est.floor {
			estimated = est.floor
		}
		if estimated >= 1000000 {
			return fmt.Sprintf("%dM/year", estimated/1000000)
		}
		return fmt.Sprintf("%dK/year", estimated/1000)
	}
	return "500K/year"
}

// Rating считает рейтинг от базовых 4.0 с бонусами за вовлечённость,
// просмотры и репосты. Результат всегда в пределах [4.0, 5.0].
func Rating(views, shares int, engagementRate float64) float64 {
	engagementBonus := engagementRate * 0.1
	if engagementBonus > 0.8 {
		engagementBonus = 0.8
	}
	viewsBonus := float64(views) / 10000 * 0.1
	if viewsBonus > 0.3 {
		viewsBonus = 0.3
	}
	sharesBonus := float64(shares) / 100 * 0.1
	if sharesBonus > 0.2 {
		sharesBonus = 0.2
	}
	rating := 4.0 + engagementBonus + viewsBonus + sharesBonus
	if rating > 5.0 {
		return 5.0
	}
	return rating
}

// Derive отбирает материалы про достопримечательности, ранжирует их по
// вовлечённости и строит карточки. Любой сбой деградирует до пустого
// списка.
func Derive(items []domain.PublishedItem, max int) (landmarks []domain.Landmark) {
	defer func() {
		if r := recover(); r != nil {
			landmarks = nil
		}
	}()
	if max <= 0 {
		max = DefaultMax
	}
	if len(items) == 0 {
		return nil
	}

	matched := make([]domain.PublishedItem, 0, len(items))
	for _, item := range items {
		if item.Place() == "" {
			continue
		}
		if IsLandmarkContent(item.Title, item.Content, item.Tags) {
			matched = append(matched, item)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return EngagementScore(matched[i]) > EngagementScore(matched[j])
	})

	if len(matched) > max {
		matched = matched[:max]
	}
	landmarks = make([]domain.Landmark, 0, len(matched))
	for _, item := range matched {
		landmarks = append(landmarks, domain.Landmark{
			Name:           LandmarkName(item.Title, item.Place()),
			Location:       item.Place(),
			Description:    Description(item.Content, item.Title),
			AnnualVisitors: AnnualVisitors(item.Type, item.Views, item.Shares),
			Rating:         Rating(item.Views, item.Shares, item.EngagementRate),
		})
	}
	return landmarks
}
