package newsfeed

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/optifeed/optifeed/internal/models"
)

var agoPattern = regexp.MustCompile(`^(\d+)\s+(second|minute|hour|day|week)s?\s+ago`)

// nowFunc is swapped out in tests.
var nowFunc = time.Now

// ResolveDate turns a source-native date representation into a UTC timestamp.
// Free-form parsing is attempted first, then relative "<N> <unit> ago"
// phrases. ok is false when neither applies; callers must exclude such items
// from recency filtering rather than treat them as current.
func ResolveDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	if parsed, err := dateparse.ParseAny(raw); err == nil {
		return parsed.UTC(), true
	}

	match := agoPattern.FindStringSubmatch(raw)
	if match == nil {
		return time.Time{}, false
	}

	qty, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, false
	}

	now := nowFunc().UTC()
	switch match[2] {
	case "second":
		return now.Add(-time.Duration(qty) * time.Second), true
	case "minute":
		return now.Add(-time.Duration(qty) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(qty) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -qty), true
	case "week":
		return now.AddDate(0, 0, -7*qty), true
	}
	return time.Time{}, false
}

// FilterWithinLast keeps events published within the given window, preserving
// order. Events whose dates cannot be resolved are dropped: an ambiguous date
// must not masquerade as fresh.
func FilterWithinLast(events []models.RawEvent, window time.Duration) []models.RawEvent {
	cutoff := nowFunc().UTC().Add(-window)

	var filtered []models.RawEvent
	for _, event := range events {
		published, ok := ResolveDate(event.Published)
		if !ok {
			continue
		}
		if !published.Before(cutoff) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
