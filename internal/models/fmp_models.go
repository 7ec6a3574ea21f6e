package models

// FMPArticlesResponse is the envelope returned by the Financial Modeling Prep
// articles endpoint.
type FMPArticlesResponse struct {
	Content []FMPArticle `json:"content"`
}

type FMPArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Tickers string `json:"tickers"`
	Link    string `json:"link"`
}

// FMPProfile is one entry of the company profile endpoint, the source for TickerKPIs.
type FMPProfile struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	MktCap            int64   `json:"mktCap"`
	Price             float64 `json:"price"`
	PE                float64 `json:"pe"`
	ReturnOnEquityTTM float64 `json:"returnOnEquityTTM"`
	ProfitMarginTTM   float64 `json:"profitMarginTTM"`
	DebtToEquityTTM   float64 `json:"debtToEquityTTM"`
}
