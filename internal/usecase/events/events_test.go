package events

import (
	"testing"

	"travel-dashboard/internal/domain"
)

func TestEventNameStripsArticle(t *testing.T) {
	cases := map[string]string{
		"The Hidden Gems of Lisbon": "Hidden Gems of Lisbon",
		"A Weekend in Rome":         "Weekend in Rome",
		"An Evening in Paris":       "Evening in Paris",
		"Theater Week in London":    "Theater Week in London",
		"Streets of Tokyo":          "Streets of Tokyo",
	}
	for title, want := range cases {
		if got := EventName(title); got != want {
			t.Fatalf("%q: ожидали %q, получили %q", title, want, got)
		}
	}
}

func TestCategoryByTypeAndTags(t *testing.T) {
	cases := []struct {
		contentType string
		tags        []string
		want        string
	}{
		{"Blog Post", []string{"food", "travel"}, "Culinary"},
		{"Blog Post", []string{"music"}, "Music"},
		{"Blog Post", []string{"museum"}, "Cultural"},
		{"Blog Post", []string{"outdoor"}, "Sports"},
		{"Blog Post", nil, "Cultural"},
		{"Instagram Post", []string{"restaurant"}, "Culinary"},
		{"Instagram Post", []string{"beach"}, "Social"},
		{"Facebook Post", []string{"concert"}, "Music"},
		{"Newsletter", []string{"food"}, "Cultural"},
	}
	for _, tc := range cases {
		if got := Category(tc.contentType, tc.tags); got != tc.want {
			t.Fatalf("%s %v: ожидали %s, получили %s", tc.contentType, tc.tags, tc.want, got)
		}
	}
}

func TestAttendeesEstimate(t *testing.T) {
	cases := []struct {
		contentType string
		views       int
		want        string
	}{
		{"Blog Post", 500, "100+ expected"},
		{"Blog Post", 25000, "2K+ expected"},
		{"Instagram Post", 400, "50+ expected"},
		{"Facebook Post", 10000, "800+ expected"},
		{"Newsletter", 99999, "500+ expected"},
	}
	for _, tc := range cases {
		if got := Attendees(tc.contentType, tc.views); got != tc.want {
			t.Fatalf("%s/%d: ожидали %q, получили %q", tc.contentType, tc.views, tc.want, got)
		}
	}
}

func TestDeriveSkipsItemsWithoutLocation(t *testing.T) {
	items := []domain.PublishedItem{
		{Title: "A Day in Paris", Location: "Paris", Date: "Apr 15, 2025", Type: "Blog Post"},
		{Title: "No Place", Location: "", Date: "Apr 16, 2025"},
		{Title: "Placeholder", Location: domain.LocationPlaceholder, Date: "Apr 17, 2025"},
	}
	events := Derive(items, 10)
	if len(events) != 1 {
		t.Fatalf("ожидали 1 событие, получили %d", len(events))
	}
	if events[0].Name != "Day in Paris" {
		t.Fatalf("ожидали «Day in Paris», получили %q", events[0].Name)
	}
	if events[0].Date != "Apr 15" {
		t.Fatalf("ожидали «Apr 15», получили %q", events[0].Date)
	}
}

func TestDeriveSortsNewestFirst(t *testing.T) {
	items := []domain.PublishedItem{
		{Title: "Old", Location: "Rome", Date: "Jan 1, 2025"},
		{Title: "New", Location: "Oslo", Date: "Mar 1, 2025"},
		{Title: "Mid", Location: "Bern", Date: "Feb 1, 2025"},
	}
	events := Derive(items, 10)
	if len(events) != 3 {
		t.Fatalf("ожидали 3 события, получили %d", len(events))
	}
	if events[0].Name != "New" || events[1].Name != "Mid" || events[2].Name != "Old" {
		t.Fatalf("неверный порядок: %v", []string{events[0].Name, events[1].Name, events[2].Name})
	}
}

func TestDeriveKeepsOrderForUnparsableDates(t *testing.T) {
	items := []domain.PublishedItem{
		{Title: "First", Location: "Rome", Date: "когда-нибудь"},
		{Title: "Second", Location: "Oslo", Date: "скоро"},
	}
	events := Derive(items, 10)
	if events[0].Name != "First" || events[1].Name != "Second" {
		t.Fatalf("нераспарсенные даты должны сохранять исходный порядок")
	}
	if events[0].Date != "когда-нибудь" {
		t.Fatalf("нераспознанная дата должна отдаваться как есть, получили %q", events[0].Date)
	}
}

func TestDeriveRespectsMax(t *testing.T) {
	var items []domain.PublishedItem
	for i := 0; i < 15; i++ {
		items = append(items, domain.PublishedItem{Title: "T", Location: "Paris", Date: "Apr 15, 2025"})
	}
	if got := len(Derive(items, 10)); got != 10 {
		t.Fatalf("ожидали 10 событий, получили %d", got)
	}
}

func TestParseContentDateLayouts(t *testing.T) {
	for _, raw := range []string{"Apr 15, 2025", "April 15, 2025", "2025-04-15", "04/15/2025"} {
		if _, ok := ParseContentDate(raw); !ok {
			t.Fatalf("ожидали, что %q распарсится", raw)
		}
	}
	if _, ok := ParseContentDate(""); ok {
		t.Fatalf("пустая строка не должна парситься")
	}
}
