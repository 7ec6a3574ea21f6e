package newsfeed

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// $TICK or EXCH:TICK forms, e.g. "$AAPL" or "NYSE:GE".
	tickerPattern = regexp.MustCompile(`\$[A-Z]{1,6}|\b[A-Z]{2,5}:[A-Z]{2,3}\b`)
)

// CleanHTML strips markup and decodes entities, returning best-effort plain
// text. It never fails: malformed input degrades to whatever text survives.
func CleanHTML(markup string) string {
	if markup == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return doc.Text()
}

// NormalizeText applies Unicode compatibility composition, collapses
// whitespace runs to single spaces and trims the ends.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractTickers returns ticker mentions in match order, duplicates included.
func ExtractTickers(text string) []string {
	return tickerPattern.FindAllString(text, -1)
}

// HashEvent derives the canonical id of an event from its raw headline bytes.
// Identical headlines hash identically, which is the dedup signal.
func HashEvent(headline string) string {
	hash := sha256.Sum256([]byte(headline))
	return hex.EncodeToString(hash[:])
}
