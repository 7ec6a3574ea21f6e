package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/optifeed/optifeed/internal/analysis"
	"github.com/optifeed/optifeed/internal/db"
	"github.com/optifeed/optifeed/internal/models"
)

// RunMicroAnalysis is the secondary flow: for analyzed items that name
// tickers, pull fundamentals and ask for a per-ticker trade bias. Results are
// advisory and only logged; nothing here touches delivery state.
func RunMicroAnalysis(ctx context.Context, store *db.Store, generator analysis.Generator) []models.TickerTendency {
	newsItems, err := store.GetAllCachedNews()
	if err != nil {
		slog.Error("[MicroFlow] Failed to load cached news",
			slog.String("error", err.Error()))
		return nil
	}

	analyzed, err := store.GetUnsentAnalyzedNews()
	if err != nil {
		slog.Error("[MicroFlow] Failed to load analyzed news",
			slog.String("error", err.Error()))
		return nil
	}

	tickersByID := make(map[string]string, len(newsItems))
	for _, item := range newsItems {
		tickersByID[item.ID] = item.Tickers
	}

	var tendencies []models.TickerTendency
	for _, news := range analyzed {
		for _, ticker := range parseTickerList(tickersByID[news.ID]) {
			kpis := analysis.FetchFinancialKPIs(ticker)
			tendency, err := analysis.AnalyzeMicro(ctx, generator, news, kpis)
			if err != nil {
				slog.Error("[MicroFlow] Micro analysis failed",
					slog.String("ticker", ticker),
					slog.String("error", err.Error()))
				continue
			}
			if tendency == nil {
				continue
			}
			slog.Info("[MicroFlow] Ticker tendency",
				slog.String("ticker", tendency.Ticker),
				slog.Float64("micro_score", tendency.MicroScore),
				slog.String("action", tendency.SuggestedAction))
			tendencies = append(tendencies, *tendency)
		}
	}
	return tendencies
}

// parseTickerList reverses the serialized "[A, B]" form stored on NewsItem.
func parseTickerList(serialized string) []string {
	trimmed := strings.Trim(serialized, "[]")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	tickers := make([]string, 0, len(parts))
	for _, part := range parts {
		if cleaned := strings.TrimSpace(part); cleaned != "" {
			tickers = append(tickers, cleaned)
		}
	}
	return tickers
}
