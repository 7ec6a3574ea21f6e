package models

// RawEvent is the common shape a feed adapter maps its native payload into.
// It is transient: classification and preprocessing consume it, nothing stores it.
type RawEvent struct {
	Headline  string   `json:"headline"`
	Body      string   `json:"body"`
	Tickers   []string `json:"tickers"`
	Published string   `json:"published"`
	Source    string   `json:"source"`
	// ID is the hex content hash of the headline; identical headlines
	// collide on purpose and feed deduplication.
	ID string `json:"id"`
}

// NewsItem is the canonical ingested unit persisted to the news table.
// Immutable once written; the id doubles as the dedup key.
type NewsItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Tickers string `json:"tickers,omitempty"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}
