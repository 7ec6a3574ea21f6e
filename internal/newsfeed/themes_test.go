package newsfeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifeed/optifeed/internal/models"
)

func TestFilterAndCategorize(t *testing.T) {
	events := []models.RawEvent{
		{Headline: "Fed raises rates", Body: "monetary policy shift"},
		{Headline: "Local bake sale", Body: "cookies for everyone"},
		{Headline: "Oil surges amid war fears", Body: "crude climbs"},
	}

	filtered, counts := FilterAndCategorize(events)

	require.Len(t, filtered, 2)
	assert.Equal(t, "Fed raises rates", filtered[0].Headline)
	assert.Equal(t, "Oil surges amid war fears", filtered[1].Headline)

	assert.Equal(t, 1, counts["central_banks"])
	assert.Equal(t, 1, counts["oil"])
	// One event may count toward several themes.
	assert.Equal(t, 1, counts["war_geo"])
	assert.Zero(t, counts["earnings"])
}

func TestFilterAndCategorizeDeterministic(t *testing.T) {
	events := []models.RawEvent{
		{Headline: "Inflation hits new high", Body: "cpi numbers"},
		{Headline: "Election day arrives", Body: "vote counting begins"},
	}

	first, firstCounts := FilterAndCategorize(events)
	second, secondCounts := FilterAndCategorize(events)

	assert.Equal(t, first, second)
	assert.Equal(t, firstCounts, secondCounts)
}

func TestFilterAndCategorizeEmpty(t *testing.T) {
	filtered, counts := FilterAndCategorize(nil)
	assert.Empty(t, filtered)
	assert.Empty(t, counts)
}
