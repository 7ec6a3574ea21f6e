package models

// BraveNewsResponse is the envelope returned by the Brave news search endpoint.
type BraveNewsResponse struct {
	Results []BraveNewsResult `json:"results"`
}

type BraveNewsResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	// Age is a relative phrase like "2 hours ago"; the date resolver handles it.
	Age string `json:"age"`
}
