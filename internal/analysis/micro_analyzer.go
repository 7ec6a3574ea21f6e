package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

const microPromptTemplate = `You are a senior equity analyst assistant.

Given:
- This macroeconomic news impact analysis:
Text: %s
Impact score: %.2f
Magnitude score: %.2f
- And these fundamentals for %s:
Company: %s
Market Cap: %d
Price: %.2f
PE Ratio: %.2f
ROE: %.2f
Profit Margin: %.2f
Debt/Equity: %.2f

Please respond ONLY in this exact JSON format:
{
"micro_score": float between -1 and 1,
"rationale": "short explanation (max 5 lines)",
"suggested_action": "buy / hold / sell / watch"
}`

type microAnalysisResponse struct {
	MicroScore      float64 `json:"micro_score"`
	Rationale       string  `json:"rationale"`
	SuggestedAction string  `json:"suggested_action"`
}

// FetchFinancialKPIs pulls fundamentals for one ticker. A fetch failure
// degrades to a KPI record carrying only the ticker symbol.
func FetchFinancialKPIs(ticker string) models.TickerKPIs {
	profile, err := clients.GetFMPClient().GetCompanyProfile(ticker)
	if err != nil {
		slog.Error("[MicroAnalyzer] Failed fetching fundamentals",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()))
		return models.TickerKPIs{Ticker: ticker}
	}
	return models.TickerKPIs{
		Ticker:       ticker,
		CompanyName:  profile.CompanyName,
		MarketCap:    profile.MktCap,
		Price:        profile.Price,
		PERatio:      profile.PE,
		ROE:          profile.ReturnOnEquityTTM,
		ProfitMargin: profile.ProfitMarginTTM,
		DebtEquity:   profile.DebtToEquityTTM,
	}
}

// AnalyzeMicro judges how a macro analysis lands on one specific ticker.
func AnalyzeMicro(ctx context.Context, gen Generator, news models.AnalyzedNews, kpis models.TickerKPIs) (*models.TickerTendency, error) {
	prompt := fmt.Sprintf(microPromptTemplate,
		news.Text, news.ImpactScore, news.MagnitudeScore,
		kpis.Ticker, kpis.CompanyName, kpis.MarketCap, kpis.Price,
		kpis.PERatio, kpis.ROE, kpis.ProfitMargin, kpis.DebtEquity)

	response, err := gen.Generate(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	var data microAnalysisResponse
	if err := ParseJSONBlock(response, &data); err != nil {
		slog.Error("[MicroAnalyzer] JSON decode failed",
			slog.String("ticker", kpis.Ticker),
			slog.String("error", err.Error()))
		return nil, nil
	}

	return &models.TickerTendency{
		Ticker:          kpis.Ticker,
		MicroScore:      data.MicroScore,
		Rationale:       data.Rationale,
		SuggestedAction: data.SuggestedAction,
		NewsID:          news.ID,
	}, nil
}
