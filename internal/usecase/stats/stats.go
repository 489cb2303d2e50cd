package stats

import (
	"fmt"
	"math"
	"strconv"

	"travel-dashboard/internal/domain"
)

// DefaultQuickStats возвращается для пустого кэша.
func DefaultQuickStats() []domain.QuickStat {
	return []domain.QuickStat{
		{Label: "Destinations", Value: "0"},
		{Label: "Scheduled", Value: "0"},
		{Label: "Engagement", Value: "+0%"},
	}
}

// Derive сводит кэш в три счётчика сайдбара: уникальные направления,
// запланированные материалы и средний engagement. Чистая функция.
func Derive(items []domain.PublishedItem) []domain.QuickStat {
	if len(items) == 0 {
		return DefaultQuickStats()
	}

	destinations := make(map[string]struct{})
	scheduled := 0
	engagementSum := 0.0
	for _, item := range items {
		if place := item.Place(); place != "" {
			destinations[place] = struct{}{}
		}
		if item.Status == domain.StatusScheduled {
			scheduled++
		}
		engagementSum += item.EngagementRate
	}
	avgEngagement := engagementSum / float64(len(items))

	return []domain.QuickStat{
		{Label: "Destinations", Value: strconv.Itoa(len(destinations))},
		{Label: "Scheduled", Value: strconv.Itoa(scheduled)},
		{Label: "Engagement", Value: fmt.Sprintf("+%d%%", int(math.Round(avgEngagement)))},
	}
}
