package picks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFairOdds(t *testing.T) {
	assert.Equal(t, 2.0, FairOdds(0.5))
	assert.Equal(t, 1.25, FairOdds(0.8))
	assert.Equal(t, 3.03, FairOdds(0.33))
	assert.Equal(t, 1.0, FairOdds(1.0))
	assert.Equal(t, 0.0, FairOdds(0.0))
	assert.Equal(t, 0.0, FairOdds(-0.1))
}

func TestBuildCandidatesFiltersByThreshold(t *testing.T) {
	probs := MarketProbabilities{
		MarketHomeWin:    0.62,
		MarketDraw:       0.21,
		MarketAwayWin:    0.17,
		MarketHomeOrDraw: 0.83,
		MarketOver25:     0.55,
		MarketUnder25:    0.45,
	}

	out := BuildCandidates(probs, 0.50)
	require.Len(t, out, 3)

	// Descending by probability.
	assert.Equal(t, MarketHomeOrDraw, out[0].Market)
	assert.Equal(t, MarketHomeWin, out[1].Market)
	assert.Equal(t, MarketOver25, out[2].Market)

	for _, c := range out {
		assert.GreaterOrEqual(t, c.Probability, 0.50)
		assert.Equal(t, FairOdds(c.Probability), c.FairOdds)
	}
}

func TestBuildCandidatesExactThresholdIncluded(t *testing.T) {
	probs := MarketProbabilities{MarketHomeWin: 0.50}
	out := BuildCandidates(probs, 0.50)
	require.Len(t, out, 1)
	assert.Equal(t, MarketHomeWin, out[0].Market)
}

func TestBuildCandidatesEmptyIsValid(t *testing.T) {
	probs := MarketProbabilities{
		MarketHomeWin: 0.34,
		MarketDraw:    0.33,
		MarketAwayWin: 0.33,
	}
	out := BuildCandidates(probs, 0.50)
	assert.Empty(t, out)
}

func TestBuildCandidatesStableOnTies(t *testing.T) {
	// Equal probabilities keep catalogue order.
	probs := MarketProbabilities{
		MarketOver25:  0.55,
		MarketBTTSYes: 0.55,
	}
	out := BuildCandidates(probs, 0.50)
	require.Len(t, out, 2)
	assert.Equal(t, MarketOver25, out[0].Market)
	assert.Equal(t, MarketBTTSYes, out[1].Market)
}
