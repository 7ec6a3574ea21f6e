package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifeed/optifeed/internal/models"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ []models.ConversationTurn) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestParseJSONBlockBare(t *testing.T) {
	var out map[string]float64
	require.NoError(t, ParseJSONBlock(`{"score": 0.5}`, &out))
	assert.Equal(t, 0.5, out["score"])
}

func TestParseJSONBlockFenced(t *testing.T) {
	fenced := "```json\n{\"score\": 0.5}\n```"
	var out map[string]float64
	require.NoError(t, ParseJSONBlock(fenced, &out))
	assert.Equal(t, 0.5, out["score"])

	plainFence := "```\n{\"score\": 0.25}\n```"
	require.NoError(t, ParseJSONBlock(plainFence, &out))
	assert.Equal(t, 0.25, out["score"])
}

func TestParseJSONBlockInvalid(t *testing.T) {
	var out map[string]any
	assert.Error(t, ParseJSONBlock("I cannot answer that.", &out))
}

func TestGenerationErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &GenerationError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAnalyzeMacro(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
		"impact_score": -0.4,
		"magnitude_score": 0.8,
		"reasoning": "Rate hike pressures rate-sensitive sectors.",
		"affected_sectors": ["Financials", "Real Estate"],
		"affected_stocks": ["XLF"]
	}` + "\n```"}

	item := models.NewsItem{
		ID:      "n1",
		Text:    "Fed raises rates by 50bps",
		Tickers: "[SPY]",
		Date:    "2025-06-15T12:00:00Z",
		Source:  "fmp",
	}

	result, err := AnalyzeMacro(context.Background(), gen, item)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "n1", result.ID)
	assert.Equal(t, "Rate hike pressures rate-sensitive sectors.", result.Text)
	assert.InDelta(t, -0.4, result.ImpactScore, 1e-9)
	assert.InDelta(t, 0.8, result.MagnitudeScore, 1e-9)
	assert.Equal(t, []string{"Financials", "Real Estate"}, result.AffectedSectors)

	// Prompt carries the item fields and the lexicon hint.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Fed raises rates by 50bps")
	assert.Contains(t, gen.prompts[0], "Lexicon sentiment hint:")
}

func TestAnalyzeMacroUnparseableReply(t *testing.T) {
	gen := &stubGenerator{reply: "Sorry, I cannot help with that."}

	result, err := AnalyzeMacro(context.Background(), gen, models.NewsItem{ID: "n1", Text: "x"})
	// Unusable output is skipped, not fatal.
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestAnalyzeMacroGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: &GenerationError{Err: errors.New("rate limited")}}

	result, err := AnalyzeMacro(context.Background(), gen, models.NewsItem{ID: "n1", Text: "x"})
	assert.Nil(t, result)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestAnalyzeMicro(t *testing.T) {
	gen := &stubGenerator{reply: `{
		"micro_score": 0.6,
		"rationale": "Strong balance sheet absorbs the shock.",
		"suggested_action": "hold"
	}`}

	news := models.AnalyzedNews{ID: "n1", Text: "macro view", ImpactScore: -0.3, MagnitudeScore: 0.9}
	kpis := models.TickerKPIs{Ticker: "AAPL", CompanyName: "Apple Inc.", Price: 190.5}

	tendency, err := AnalyzeMicro(context.Background(), gen, news, kpis)
	require.NoError(t, err)
	require.NotNil(t, tendency)

	assert.Equal(t, "AAPL", tendency.Ticker)
	assert.Equal(t, "n1", tendency.NewsID)
	assert.InDelta(t, 0.6, tendency.MicroScore, 1e-9)
	assert.Equal(t, "hold", tendency.SuggestedAction)
}
