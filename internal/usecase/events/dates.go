package events

import (
	"strings"
	"time"
)

// Форматы дат, встречающиеся в кэше. Даты приходят как display-строки
// и не обязаны парситься; всё, что не распозналось, отдаётся как есть.
var contentDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// ParseContentDate разбирает display-строку даты по известным форматам.
func ParseContentDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range contentDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatEventDate приводит дату к виду «Apr 15»; нераспознанная строка
// возвращается без изменений.
func FormatEventDate(raw string) string {
	if parsed, ok := ParseContentDate(raw); ok {
		return parsed.Format("Jan 2")
	}
	return raw
}
