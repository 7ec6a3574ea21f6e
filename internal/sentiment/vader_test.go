package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveLinks(t *testing.T) {
	assert.Equal(t, "read more", RemoveLinks("[read more](https://example.com/a?b=1)"))
	assert.Equal(t, "before  after", RemoveLinks("before https://example.com after"))
	assert.Equal(t, "no links here", RemoveLinks("no links here"))
}

func TestPrescoreLabels(t *testing.T) {
	score, label := Prescore("Stocks rally on great earnings, an excellent and wonderful surprise")
	assert.Equal(t, "positive", label)
	assert.Greater(t, score, 0.20)

	score, label = Prescore("Markets crash in a terrible, horrible disaster as panic spreads")
	assert.Equal(t, "negative", label)
	assert.Less(t, score, -0.20)

	_, label = Prescore("The committee will meet on Thursday at noon")
	assert.Equal(t, "neutral", label)
}

func TestPrescoreIgnoresMarkdownMarkup(t *testing.T) {
	plainScore, _ := Prescore("great earnings beat expectations")
	markedScore, _ := Prescore("**great** [earnings](https://example.com) beat expectations")
	assert.InDelta(t, plainScore, markedScore, 0.1)
}
