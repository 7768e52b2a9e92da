package picks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := NewPredictor(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestNewPredictorRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxGoals = 0
	_, err := NewPredictor(cfg)
	assert.Error(t, err)
}

func TestPredictRatesDeterministic(t *testing.T) {
	p := testPredictor(t)
	rates := GoalRateEstimate{Home: 1.9, Away: 0.8}

	a := p.PredictRates(rates)
	b := p.PredictRates(rates)
	require.Equal(t, a.Probabilities, b.Probabilities)
	require.Equal(t, a.Candidates, b.Candidates)
	assert.Equal(t, a.Best, b.Best)
}

func TestPredictHonoursRateOverrides(t *testing.T) {
	p := testPredictor(t)

	f := NewFixture()
	f.HomeID, f.AwayID = 1, 2
	f.RateOverrideHome = 2.2
	f.RateOverrideAway = 0.6

	// Strengths that would otherwise produce very different rates.
	strengths := map[int64]TeamStrength{
		1: {AttackHome: 0.5, DefenseHome: 0.5, AttackAway: 0.5, DefenseAway: 0.5},
		2: {AttackHome: 0.5, DefenseHome: 0.5, AttackAway: 0.5, DefenseAway: 0.5},
	}
	pred := p.Predict(f, strengths, LeagueBaselines{HomeGoals: 1.5, AwayGoals: 1.2})
	assert.Equal(t, 2.2, pred.Rates.Home)
	assert.Equal(t, 0.6, pred.Rates.Away)
}

func TestPredictFromHistoryUsesVenueForm(t *testing.T) {
	p := testPredictor(t)

	f := NewFixture()
	f.HomeID, f.AwayID = 1, 2

	homeRecords := []TeamMatchRecord{
		{Venue: VenueHome, GoalsFor: 3, GoalsAgainst: 0},
		{Venue: VenueHome, GoalsFor: 2, GoalsAgainst: 1},
	}
	awayRecords := []TeamMatchRecord{
		{Venue: VenueAway, GoalsFor: 0, GoalsAgainst: 2},
		{Venue: VenueAway, GoalsFor: 1, GoalsAgainst: 3},
	}

	pred := p.PredictFromHistory(f, homeRecords, awayRecords)
	assert.Greater(t, pred.Rates.Home, pred.Rates.Away,
		"strong home form against leaky away defense must favour the home side")
}

func TestPickForPackagesPrediction(t *testing.T) {
	p := testPredictor(t)

	f := NewFixture()
	f.League = "PL"
	f.ID = 1001
	f.HomeTeam, f.AwayTeam = "Arsenal", "Norwich"
	f.HomeID, f.AwayID = 1, 2

	pred := p.PredictRates(GoalRateEstimate{Home: 2.4, Away: 0.7})
	pick, err := p.PickFor(f, pred)
	require.NoError(t, err)

	assert.Equal(t, "PL", pick.League)
	assert.Equal(t, int64(1001), pick.MatchID)
	assert.Equal(t, 2.4, pick.HomeRate)
	assert.True(t, pick.IsPending())

	require.NotNil(t, pred.Best)
	assert.Equal(t, pred.Best.Market.String(), pick.BestMarket)
	assert.Equal(t, pred.Best.Probability, pick.Probability)

	// Candidate list survives the JSON round trip.
	decoded := pick.Candidates()
	require.Equal(t, len(pred.Candidates), len(decoded))
	for i := range decoded {
		assert.Equal(t, pred.Candidates[i].Market, decoded[i].Market)
		assert.InDelta(t, pred.Candidates[i].Probability, decoded[i].Probability, 1e-9)
	}
}

func TestPickForWithoutSelection(t *testing.T) {
	p := testPredictor(t)

	f := NewFixture()
	f.League, f.ID = "PL", 1002

	pred := Prediction{
		Rates:         GoalRateEstimate{Home: 1.3, Away: 1.3},
		Probabilities: MarketProbabilities{},
	}
	pick, err := p.PickFor(f, pred)
	require.NoError(t, err)
	assert.False(t, pick.HasSelection())
	assert.Equal(t, 0.0, pick.Probability)
	assert.Equal(t, 0.0, pick.FairOdds)
}

func TestSettleTransitionsExactlyOnce(t *testing.T) {
	pick := &Pick{
		League:     "PL",
		MatchID:    1,
		BestMarket: "Home Win",
		Result:     ResultPending,
	}

	require.True(t, pick.Settle(2, 1))
	assert.Equal(t, ResultWin, pick.Result)
	assert.Equal(t, "2-1", pick.ResultReason)
	assert.False(t, pick.SettledAt.IsZero())

	// A second settlement, even with a different score, changes nothing.
	assert.False(t, pick.Settle(0, 5))
	assert.Equal(t, ResultWin, pick.Result)
	assert.Equal(t, "2-1", pick.ResultReason)
}

func TestSettleWithoutSelectionPushes(t *testing.T) {
	pick := &Pick{League: "PL", MatchID: 2, Result: ResultPending}
	require.True(t, pick.Settle(1, 1))
	assert.Equal(t, ResultPush, pick.Result)
	assert.Equal(t, "No selection", pick.ResultReason)
}

func TestSettleUnknownMarketPushes(t *testing.T) {
	pick := &Pick{League: "PL", MatchID: 3, BestMarket: "Handicap -1", Result: ResultPending}
	require.True(t, pick.Settle(2, 0))
	assert.Equal(t, ResultPush, pick.Result)
	assert.Equal(t, "Market not supported", pick.ResultReason)
}

func TestPickBeforeSaveDefaults(t *testing.T) {
	pick := &Pick{League: "PL", MatchID: 4}
	require.NoError(t, pick.BeforeSave())
	assert.Equal(t, ResultPending, pick.Result)
	assert.False(t, pick.CreatedAt.IsZero())

	created := pick.CreatedAt
	require.NoError(t, pick.BeforeSave())
	assert.Equal(t, created, pick.CreatedAt, "creation time set once")
}
