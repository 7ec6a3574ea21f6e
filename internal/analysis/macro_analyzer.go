package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/optifeed/optifeed/internal/models"
	"github.com/optifeed/optifeed/internal/sentiment"
)

const macroPromptTemplate = `You are a senior macroeconomic analyst assistant.
Given the following news, your task is to analyze its impact on financial markets and return ONLY valid JSON in this shape:
{
"impact_score": float between -1 and 1,
"magnitude_score": float between 0 and 1,
"reasoning": "short explanation (max 5 lines)",
"affected_sectors": ["list of sectors or industries"],
"affected_companies": ["list of company names or tickers"],
"affected_stocks": ["list of tickers or ETFs that could be traded"]
}

Guidelines:
- The impact_score reflects whether this is positive (near +1) or negative (near -1) for markets.
- The magnitude_score reflects how significant this news is (near 1 = major, near 0 = minor).
- Always provide affected_sectors and affected_stocks, even if the news doesn't mention any explicitly. Infer reasonable candidates based on the macro context.
- If there are no explicit companies, propose tickers or ETFs that might be influenced by this type of news (e.g., "SPY", "XLF", "TSLA").
- Keep the reasoning concise, max 10 lines.

Text: %s
Tickers: %s
Date: %s
Source: %s
Lexicon sentiment hint: %.2f (%s)`

type macroAnalysisResponse struct {
	ImpactScore       float64  `json:"impact_score"`
	MagnitudeScore    float64  `json:"magnitude_score"`
	Reasoning         string   `json:"reasoning"`
	AffectedSectors   []string `json:"affected_sectors"`
	AffectedCompanies []string `json:"affected_companies"`
	AffectedStocks    []string `json:"affected_stocks"`
}

// AnalyzeMacro asks the LLM for a market-impact judgment of one stored item.
// A nil result with nil error means the model answered but not with usable JSON.
func AnalyzeMacro(ctx context.Context, gen Generator, item models.NewsItem) (*models.AnalyzedNews, error) {
	prescore, label := sentiment.Prescore(item.Text)
	prompt := fmt.Sprintf(macroPromptTemplate,
		item.Text, item.Tickers, item.Date, item.Source, prescore, label)

	response, err := gen.Generate(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	var data macroAnalysisResponse
	if err := ParseJSONBlock(response, &data); err != nil {
		slog.Error("[MacroAnalyzer] JSON decode failed",
			slog.String("id", item.ID),
			slog.String("error", err.Error()))
		return nil, nil
	}

	return &models.AnalyzedNews{
		ID:              item.ID,
		Text:            data.Reasoning,
		ImpactScore:     data.ImpactScore,
		MagnitudeScore:  data.MagnitudeScore,
		AffectedSectors: data.AffectedSectors,
	}, nil
}
