package models

// AnalyzedNews holds the LLM judgment for a stored NewsItem, keyed 1:1 by its id.
// Sent flips false -> true exactly once, when delivery succeeds.
type AnalyzedNews struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	ImpactScore     float64  `json:"impact_score"`
	MagnitudeScore  float64  `json:"magnitude_score"`
	AffectedSectors []string `json:"affected_sectors"`
	Sent            bool     `json:"sent"`
}
