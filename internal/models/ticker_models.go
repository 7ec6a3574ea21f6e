package models

// TickerKPIs holds company fundamentals for one ticker, fed into micro analysis prompts.
type TickerKPIs struct {
	Ticker       string  `json:"ticker"`
	CompanyName  string  `json:"company_name,omitempty"`
	MarketCap    int64   `json:"market_cap,omitempty"`
	Price        float64 `json:"price,omitempty"`
	PERatio      float64 `json:"pe_ratio,omitempty"`
	ROE          float64 `json:"roe,omitempty"`
	ProfitMargin float64 `json:"profit_margin,omitempty"`
	DebtEquity   float64 `json:"debt_equity,omitempty"`
}

// TickerTendency is the per-ticker trade-bias judgment derived from a macro
// analysis plus fundamentals.
type TickerTendency struct {
	Ticker          string  `json:"ticker"`
	MicroScore      float64 `json:"micro_score"`
	Rationale       string  `json:"rationale,omitempty"`
	SuggestedAction string  `json:"suggested_action,omitempty"`
	NewsID          string  `json:"news_id"`
}
