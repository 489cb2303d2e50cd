package overview

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"travel-dashboard/internal/domain"
)

// PctChange результат сравнения двух периодов.
type PctChange struct {
	Label    string
	Positive bool
}

// ComputePctChange считает процент изменения с защитой от пустого
// предыдущего периода: при previous <= 0 всегда «+0%».
func ComputePctChange(current, previous float64) PctChange {
	if previous <= 0 {
		return PctChange{Label: "+0%", Positive: true}
	}
	change := (current - previous) / previous * 100
	rounded := int(math.Round(change))
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return PctChange{Label: fmt.Sprintf("%s%d%%", sign, rounded), Positive: change >= 0}
}

var numberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseMinutes достаёт число минут из строк вида «3 min»; 0, если числа нет.
func ParseMinutes(raw string) float64 {
	match := numberRegex.FindString(raw)
	if match == "" {
		return 0
	}
	minutes, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return minutes
}

// EstimateReadTime оценивает время чтения по длине текста (200 слов в минуту).
func EstimateReadTime(content string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	words := len(strings.Fields(content))
	minutes := math.Round(float64(words) / 200)
	if minutes < 1 {
		return 1
	}
	return minutes
}

func readMinutes(item domain.PublishedItem) float64 {
	if minutes := ParseMinutes(item.ReadingTime); minutes > 0 {
		return minutes
	}
	return EstimateReadTime(item.Content)
}

// groupThousands форматирует целое с разделителями разрядов.
func groupThousands(n int) string {
	raw := strconv.Itoa(n)
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	if len(raw) <= 3 {
		return raw
	}
	var b strings.Builder
	lead := len(raw) % 3
	if lead > 0 {
		b.WriteString(raw[:lead])
	}
	for i := lead; i < len(raw); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(raw[i : i+3])
	}
	return b.String()
}

func sumViews(items []domain.PublishedItem) float64 {
	total := 0.0
	for _, item := range items {
		total += float64(item.Views)
	}
	return total
}

func sumShares(items []domain.PublishedItem) float64 {
	total := 0.0
	for _, item := range items {
		total += float64(item.Shares)
	}
	return total
}

func avgReadTime(items []domain.PublishedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += readMinutes(item)
	}
	return total / float64(len(items))
}

func avgEngagement(items []domain.PublishedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += item.EngagementRate
	}
	return total / float64(len(items))
}

// Derive строит четыре карточки метрик. Кэш упорядочен от свежих к
// старым, поэтому «текущий период» — первая половина, «предыдущий» —
// вторая; процент изменения сравнивает их.
func Derive(items []domain.PublishedItem) []domain.MetricCard {
	mid := len(items) / 2
	if mid == 0 {
		mid = 1
	}
	if mid > len(items) {
		mid = len(items)
	}
	recent := items[:mid]
	previous := items[mid:]

	viewsChange := ComputePctChange(sumViews(recent), sumViews(previous))
	sharesChange := ComputePctChange(sumShares(recent), sumShares(previous))
	readChange := ComputePctChange(avgReadTime(recent), avgReadTime(previous))
	engagementChange := ComputePctChange(avgEngagement(recent), avgEngagement(previous))

	return []domain.MetricCard{
		{
			Title:      "Total Views",
			Value:      groupThousands(int(sumViews(items))),
			Change:     viewsChange.Label,
			IsPositive: viewsChange.Positive,
		},
		{
			Title:      "Shares",
			Value:      groupThousands(int(sumShares(items))),
			Change:     sharesChange.Label,
			IsPositive: sharesChange.Positive,
		},
		{
			Title:      "Avg. Read Time",
			Value:      fmt.Sprintf("%.1f min", avgReadTime(items)),
			Change:     readChange.Label,
			IsPositive: readChange.Positive,
		},
		{
			Title:      "Engagement Rate",
			Value:      fmt.Sprintf("%.1f%%", avgEngagement(items)),
			Change:     engagementChange.Label,
			IsPositive: engagementChange.Positive,
		},
	}
}
