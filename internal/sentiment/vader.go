package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

// A cheap local VADER pass over news text. The score is advisory: it rides
// along in the LLM prompt as a hint and never gates the pipeline.

var analyzer = govader.NewSentimentIntensityAnalyzer()

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return bareURLPattern.ReplaceAllString(input, "")
}

// FlattenMarkdown renders markdown to plain text so link syntax and emphasis
// markers do not skew the lexicon scores.
func FlattenMarkdown(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")
	return RemoveLinks(plainText)
}

// Prescore returns the VADER compound score and a coarse label for one news text.
func Prescore(text string) (float64, string) {
	plainText := FlattenMarkdown(text)

	polarity := analyzer.PolarityScores(plainText)
	score := polarity.Compound

	var label string
	switch {
	case score >= 0.20:
		label = "positive"
	case score <= -0.20:
		label = "negative"
	default:
		label = "neutral"
	}

	return score, label
}
