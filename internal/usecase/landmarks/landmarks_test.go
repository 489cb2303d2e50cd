package landmarks

import (
	"math"
	"testing"

	"travel-dashboard/internal/domain"
)

func TestRatingBounds(t *testing.T) {
	cases := []struct {
		views, shares int
		engagement    float64
	}{
		{0, 0, 0},
		{100, 5, 2.5},
		{1000000, 100000, 100},
	}
	for _, tc := range cases {
		rating := Rating(tc.views, tc.shares, tc.engagement)
		if rating < 4.0 || rating > 5.0 {
			t.Fatalf("рейтинг %v вне диапазона [4.0, 5.0] для %+v", rating, tc)
		}
	}
}

func TestRatingFormula(t *testing.T) {
	// 4.0 + 0.25 + 0.05 + 0.05
	rating := Rating(5000, 50, 2.5)
	if math.Abs(rating-4.35) > 1e-9 {
		t.Fatalf("ожидали 4.35, получили %v", rating)
	}
}

func TestEngagementScore(t *testing.T) {
	item := domain.PublishedItem{Views: 100, Shares: 5, EngagementRate: 2}
	if got := EngagementScore(item); got != 350 {
		t.Fatalf("ожидали 350, получили %v", got)
	}
}

func TestLandmarkNameFromTitle(t *testing.T) {
	if got := LandmarkName("The Eiffel Tower at Night", "Paris, France"); got != "Eiffel Tower at Night" {
		t.Fatalf("заголовок с существительным-ориентиром должен стать именем, получили %q", got)
	}
	if got := LandmarkName("My Favourite Walks", "Paris, France"); got != "Paris Landmark" {
		t.Fatalf("ожидали «Paris Landmark», получили %q", got)
	}
}

func TestDescriptionFirstSentence(t *testing.T) {
	content := "Ok. The Eiffel Tower dominates the skyline of Paris! Second sentence."
	got := Description(content, "Eiffel Tower")
	if got != "The Eiffel Tower dominates the skyline of Paris." {
		t.Fatalf("ожидали первое содержательное предложение, получили %q", got)
	}
	fallback := Description("Hi.", "Eiffel Tower")
	if fallback != "Historic eiffel tower with cultural significance." {
		t.Fatalf("ожидали шаблонное описание, получили %q", fallback)
	}
}

func TestAnnualVisitors(t *testing.T) {
	if got := AnnualVisitors("Blog Post", 2000, 100); got != "3M/year" {
		t.Fatalf("ожидали 3M/year, получили %q", got)
	}
	if got := AnnualVisitors("Instagram Post", 10, 0); got != "50K/year" {
		t.Fatalf("ожидали нижнюю границу 50K/year, получили %q", got)
	}
	if got := AnnualVisitors("Newsletter", 999, 999); got != "500K/year" {
		t.Fatalf("ожидали дефолт 500K/year, получили %q", got)
	}
}

func TestDeriveFiltersAndRanks(t *testing.T) {
	items := []domain.PublishedItem{
		{
			Title:    "The Eiffel Tower Guide",
			Content:  "The Eiffel Tower dominates the skyline of Paris and draws millions.",
			Location: "Paris, France",
			Type:     "Blog Post",
			Views:    100,
		},
		{
			Title:    "Colosseum After Dark",
			Content:  "The Colosseum is the largest ancient amphitheatre ever built.",
			Location: "Rome, Italy",
			Type:     "Blog Post",
			Views:    5000,
			Shares:   100,
		},
		{
			Title:    "Packing Tips",
			Content:  "Roll your clothes to save space in the suitcase.",
			Location: "Oslo",
			Type:     "Blog Post",
			Views:    99999,
		},
	}
	landmarks := Derive(items, 10)
	if len(landmarks) != 2 {
		t.Fatalf("ожидали 2 достопримечательности, получили %d", len(landmarks))
	}
	if landmarks[0].Location != "Rome, Italy" {
		t.Fatalf("первой должна идти самая вовлекающая, получили %q", landmarks[0].Location)
	}
	for _, lm := range landmarks {
		if lm.Rating < 4.0 || lm.Rating > 5.0 {
			t.Fatalf("рейтинг %v вне диапазона", lm.Rating)
		}
	}
}

func TestDeriveSkipsItemsWithoutLocation(t *testing.T) {
	items := []domain.PublishedItem{
		{Title: "The Eiffel Tower", Content: "The Eiffel Tower dominates the skyline of Paris.", Location: domain.LocationPlaceholder},
	}
	if got := Derive(items, 10); len(got) != 0 {
		t.Fatalf("материал без локации не должен попадать в выдачу")
	}
}

func TestIsLandmarkContent(t *testing.T) {
	if !IsLandmarkContent("Weekend Trip", "We visited the Louvre and walked along the Seine.", nil) {
		t.Fatalf("упоминание Louvre должно распознаваться")
	}
	if !IsLandmarkContent("Best Views", "Great food everywhere.", []string{"heritage"}) {
		t.Fatalf("тег heritage должен распознаваться")
	}
	if IsLandmarkContent("Packing Tips", "Roll your clothes.", []string{"tips"}) {
		t.Fatalf("обычный материал не должен распознаваться как достопримечательность")
	}
}
