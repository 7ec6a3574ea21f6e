package newsfeed

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

// BuildEvent assembles a RawEvent, deriving tickers from the text when the
// source carries none and stamping the content-hash id.
func BuildEvent(headline, body, published string, tickers []string, source string) models.RawEvent {
	if len(tickers) == 0 {
		tickers = ExtractTickers(headline + " " + body)
	}
	return models.RawEvent{
		Headline:  headline,
		Body:      body,
		Tickers:   tickers,
		Published: published,
		Source:    source,
		ID:        HashEvent(headline),
	}
}

// FetchFMPEvents pulls FMP articles and maps them into raw events. A fetch
// failure yields an empty slice; retrying is the scheduler's business.
func FetchFMPEvents() []models.RawEvent {
	slog.Info("[NewsFeed] Fetching news from Financial Modeling Prep...")

	articles, err := clients.GetFMPClient().GetArticles()
	if err != nil {
		slog.Error("[NewsFeed] FMP fetch error", slog.String("error", err.Error()))
		return nil
	}
	slog.Info("[NewsFeed] FMP articles loaded", slog.Int("count", len(articles)))

	nowStr := time.Now().UTC().Format(time.RFC3339)
	events := make([]models.RawEvent, 0, len(articles))
	for _, article := range articles {
		headline := CleanHTML(article.Title)
		if headline == "" {
			headline = "No title"
		}
		body := CleanHTML(article.Content)
		published := article.Date
		if published == "" {
			published = nowStr
		}
		source := article.Link
		if source == "" {
			source = "FMP"
		}
		events = append(events, BuildEvent(headline, body, published, splitFMPTickers(article.Tickers), source))
	}
	return events
}

// FetchBraveEvents pulls Brave news results and maps them into raw events.
func FetchBraveEvents() []models.RawEvent {
	slog.Info("[NewsFeed] Fetching news from Brave Search...")

	results, err := clients.GetBraveClient().GetNews()
	if err != nil {
		slog.Error("[NewsFeed] Brave fetch error", slog.String("error", err.Error()))
		return nil
	}
	slog.Info("[NewsFeed] Brave results loaded", slog.Int("count", len(results)))

	nowStr := time.Now().UTC().Format(time.RFC3339)
	events := make([]models.RawEvent, 0, len(results))
	for _, result := range results {
		headline := CleanHTML(result.Title)
		if headline == "" {
			headline = "No title"
		}
		body := CleanHTML(result.Description)
		published := result.Age
		if published == "" {
			published = nowStr
		}
		source := result.URL
		if source == "" {
			source = "Brave"
		}
		events = append(events, BuildEvent(headline, body, published, nil, source))
	}
	return events
}

// FetchAllNews aggregates every feed into one raw event list.
func FetchAllNews() []models.RawEvent {
	slog.Info("[NewsFeed] Fetching news from all sources...")

	events := FetchFMPEvents()
	events = append(events, FetchBraveEvents()...)

	slog.Info("[NewsFeed] Aggregated news items from all sources",
		slog.Int("count", len(events)))
	return events
}

// PreprocessNews turns classified raw events into canonical NewsItems:
// normalized text, re-extracted tickers, original date and source preserved.
func PreprocessNews(events []models.RawEvent) []models.NewsItem {
	items := make([]models.NewsItem, 0, len(events))
	for _, event := range events {
		fullText := NormalizeText(event.Headline + " " + event.Body)
		tickers := ExtractTickers(fullText)
		items = append(items, models.NewsItem{
			ID:      event.ID,
			Text:    fullText,
			Tickers: serializeTickers(tickers),
			Date:    event.Published,
			Source:  event.Source,
		})
	}
	slog.Info("[NewsFeed] Preprocessed news items", slog.Int("count", len(items)))
	return items
}

func splitFMPTickers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tickers = append(tickers, trimmed)
		}
	}
	return tickers
}

func serializeTickers(tickers []string) string {
	if len(tickers) == 0 {
		return ""
	}
	return fmt.Sprintf("[%s]", strings.Join(tickers, ", "))
}
