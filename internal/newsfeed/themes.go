package newsfeed

import (
	"log/slog"
	"strings"

	"github.com/optifeed/optifeed/internal/models"
)

// THEMES is the fixed keyword taxonomy used to decide whether a raw event is
// worth analyzing at all. Keywords are lowercase literals matched by substring.
var THEMES = map[string][]string{
	"earnings":      {"earnings", "profits", "result", "quarter"},
	"m&a":           {"acquisition", "merger", "buyout", "takeover"},
	"downgrade":     {"downgrade", "rating"},
	"oil":           {"oil", "crude", "barrel"},
	"inflation":     {"inflation", "cpi", "ppi"},
	"central_banks": {"fed", "ecb", "rate hike", "interest rates", "monetary"},
	"war_geo":       {"war", "attack", "russia", "ukraine", "israel", "palestine", "china", "taiwan", "iran"},
	"bankruptcy":    {"bankruptcy", "insolvency", "chapter 11"},
	"strikes":       {"strike", "union", "protest"},
	"cyber":         {"cyber", "hack", "data breach"},
	"climate":       {"climate", "hurricane", "flood", "wildfire"},
	"elections":     {"election", "vote", "ballot"},
}

// FilterAndCategorize keeps events matching at least one theme and counts
// matches per theme. An event may count toward several themes but appears in
// the output once. Pure and order-preserving.
func FilterAndCategorize(events []models.RawEvent) ([]models.RawEvent, map[string]int) {
	var filtered []models.RawEvent
	themeCounter := make(map[string]int)

	for _, event := range events {
		text := strings.ToLower(event.Headline + " " + event.Body)
		matched := false
		for theme, keywords := range THEMES {
			for _, keyword := range keywords {
				if strings.Contains(text, keyword) {
					themeCounter[theme]++
					matched = true
					break
				}
			}
		}
		if matched {
			filtered = append(filtered, event)
		}
	}

	slog.Info("[Themes] Filtered and categorized news items",
		slog.Int("kept", len(filtered)),
		slog.Int("dropped", len(events)-len(filtered)))
	for theme, count := range themeCounter {
		slog.Debug("[Themes] Theme match count",
			slog.String("theme", theme),
			slog.Int("count", count))
	}

	return filtered, themeCounter
}
