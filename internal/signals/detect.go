package signals

import (
	"log/slog"

	"github.com/optifeed/optifeed/internal/models"
)

// SignalStore is the slice of the persistence contract signal detection needs.
type SignalStore interface {
	GetUnsentAnalyzedNews() ([]models.AnalyzedNews, error)
	MarkAsSent(newsID string) error
}

// Publisher hands alert tasks to the broker.
type Publisher interface {
	Publish(task models.Task)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(task models.Task)

func (f PublisherFunc) Publish(task models.Task) { f(task) }

// DetectSignalsAndPush formats every undelivered analysis above the magnitude
// threshold, publishes the chunks as alert tasks and marks the row sent.
func DetectSignalsAndPush(store SignalStore, publisher Publisher, magnitudeThreshold float64) error {
	slog.Info("[Signals] Checking for new signals...")

	newsItems, err := store.GetUnsentAnalyzedNews()
	if err != nil {
		return err
	}
	slog.Info("[Signals] Found unsent analyzed items", slog.Int("count", len(newsItems)))

	var impactful []models.AnalyzedNews
	for _, news := range newsItems {
		if news.MagnitudeScore > magnitudeThreshold {
			impactful = append(impactful, news)
		}
	}
	slog.Info("[Signals] Items above magnitude threshold",
		slog.Int("count", len(impactful)),
		slog.Float64("threshold", magnitudeThreshold))

	if len(impactful) == 0 {
		slog.Info("[Signals] Nothing significant today")
		return nil
	}

	for _, news := range impactful {
		fullMessage := FormatSignalMessage(news)
		parts := SplitMessage(fullMessage, SOFT_LIMIT)

		for _, part := range parts {
			publisher.Publish(models.Task{
				Type:    models.TaskTypeAlert,
				Message: part,
			})
		}

		if err := store.MarkAsSent(news.ID); err != nil {
			slog.Error("[Signals] Failed to mark news as sent",
				slog.String("id", news.ID),
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("[Signals] Sent signal parts",
			slog.Int("parts", len(parts)),
			slog.String("id", news.ID))
	}

	slog.Info("[Signals] Signal detection completed")
	return nil
}
