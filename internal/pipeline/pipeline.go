package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/optifeed/optifeed/internal/analysis"
	"github.com/optifeed/optifeed/internal/db"
	"github.com/optifeed/optifeed/internal/models"
	"github.com/optifeed/optifeed/internal/newsfeed"
	"github.com/optifeed/optifeed/internal/signals"
)

const recencyWindow = 24 * time.Hour

// Run executes one full ingestion cycle: fetch, recency-filter, classify,
// dedupe, persist, analyze, then detect and push signals. Exactly one Run is
// active at a time; the store assumes a single writer.
func Run(ctx context.Context, store *db.Store, generator analysis.Generator, publisher signals.Publisher, magnitudeThreshold float64) error {
	slog.Info("[Pipeline] Starting ingestion cycle...")

	events := newsfeed.FetchAllNews()

	recent := newsfeed.FilterWithinLast(events, recencyWindow)
	slog.Info("[Pipeline] Recent news items", slog.Int("count", len(recent)))

	categorized, _ := newsfeed.FilterAndCategorize(recent)
	processed := newsfeed.PreprocessNews(categorized)

	var newItems []models.NewsItem
	for _, item := range processed {
		cached, err := store.IsCached(item.ID)
		if err != nil {
			slog.Error("[Pipeline] Cache lookup failed",
				slog.String("id", item.ID),
				slog.String("error", err.Error()))
			continue
		}
		if !cached {
			newItems = append(newItems, item)
		}
	}
	slog.Info("[Pipeline] New items after deduplication", slog.Int("count", len(newItems)))

	if err := store.SaveNewsItems(newItems); err != nil {
		return err
	}

	analyzedCount := 0
	for _, item := range newItems {
		analyzed, err := analysis.AnalyzeMacro(ctx, generator, item)
		if err != nil {
			slog.Error("[Pipeline] Macro analysis failed",
				slog.String("id", item.ID),
				slog.String("error", err.Error()))
			continue
		}
		if analyzed == nil {
			slog.Warn("[Pipeline] Macro analysis returned no usable result",
				slog.String("id", item.ID))
			continue
		}
		if err := store.SaveAnalyzedNews(*analyzed); err != nil {
			slog.Error("[Pipeline] Failed to save analysis",
				slog.String("id", item.ID),
				slog.String("error", err.Error()))
			continue
		}
		analyzedCount++
		slog.Info("[Pipeline] Analyzed news item",
			slog.String("id", item.ID),
			slog.Float64("magnitude", analyzed.MagnitudeScore))
	}
	slog.Info("[Pipeline] Analysis completed", slog.Int("analyzed", analyzedCount))

	if err := signals.DetectSignalsAndPush(store, publisher, magnitudeThreshold); err != nil {
		return err
	}

	slog.Info("[Pipeline] Ingestion cycle fully completed")
	return nil
}
