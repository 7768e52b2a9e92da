package picks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateRatesAppliesMultipliers(t *testing.T) {
	cfg := DefaultConfig()
	baselines := LeagueBaselines{HomeGoals: 1.5, AwayGoals: 1.0}
	strengths := map[int64]TeamStrength{
		1: {AttackHome: 1.2, DefenseHome: 0.9, AttackAway: 1.0, DefenseAway: 1.0},
		2: {AttackHome: 1.0, DefenseHome: 1.0, AttackAway: 0.8, DefenseAway: 1.1},
	}

	est := EstimateRates(1, 2, strengths, baselines, cfg)
	assert.InDelta(t, 1.5*1.2*1.1, est.Home, 1e-12)
	assert.InDelta(t, 1.0*0.8*0.9, est.Away, 1e-12)
}

func TestEstimateRatesMissingTeamFallsBackToBaselines(t *testing.T) {
	cfg := DefaultConfig()
	baselines := LeagueBaselines{HomeGoals: 1.5, AwayGoals: 1.0}
	strengths := map[int64]TeamStrength{
		1: {AttackHome: 2.0, DefenseHome: 2.0, AttackAway: 2.0, DefenseAway: 2.0},
	}

	// Team 2 absent: both rates degrade to the unmodified baselines.
	est := EstimateRates(1, 2, strengths, baselines, cfg)
	assert.InDelta(t, 1.5, est.Home, 1e-12)
	assert.InDelta(t, 1.0, est.Away, 1e-12)
}

func TestEstimateRatesClampsBand(t *testing.T) {
	cfg := DefaultConfig()
	baselines := LeagueBaselines{HomeGoals: 3.0, AwayGoals: 0.2}
	strengths := map[int64]TeamStrength{
		1: {AttackHome: 4.0, DefenseHome: 0.1, AttackAway: 1.0, DefenseAway: 1.0},
		2: {AttackHome: 1.0, DefenseHome: 1.0, AttackAway: 0.1, DefenseAway: 4.0},
	}

	est := EstimateRates(1, 2, strengths, baselines, cfg)
	assert.Equal(t, cfg.RateCeiling, est.Home) // 3.0*4.0*4.0 clamped down
	assert.Equal(t, cfg.RateFloor, est.Away)   // 0.2*0.1*0.1 clamped up
}

func TestEstimateRatesFromForm(t *testing.T) {
	cfg := DefaultConfig()
	homeForm := VenueForm{GoalsForAvg: 2.0, GoalsAgainstAvg: 1.0, Matches: 5}
	awayForm := VenueForm{GoalsForAvg: 1.0, GoalsAgainstAvg: 1.5, Matches: 5}

	est := EstimateRatesFromForm(homeForm, awayForm, cfg)

	rawHome := (2.0 + 1.5) / 2.0
	rawAway := (1.0 + 1.0) / 2.0
	wantHome := rawHome*cfg.BlendWeight + cfg.DefaultHomeRate*(1-cfg.BlendWeight)
	wantAway := rawAway*cfg.BlendWeight + cfg.DefaultAwayRate*(1-cfg.BlendWeight)
	assert.InDelta(t, wantHome, est.Home, 1e-12)
	assert.InDelta(t, wantAway, est.Away, 1e-12)
}

func TestEstimateRatesFromFormEmptySideUsesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	est := EstimateRatesFromForm(VenueForm{}, VenueForm{GoalsForAvg: 2, Matches: 3}, cfg)
	assert.Equal(t, cfg.DefaultHomeRate, est.Home)
	assert.Equal(t, cfg.DefaultAwayRate, est.Away)
}

func TestEstimateRatesFromFormClampsToFormBand(t *testing.T) {
	cfg := DefaultConfig()
	homeForm := VenueForm{GoalsForAvg: 9.0, GoalsAgainstAvg: 0.0, Matches: 2}
	awayForm := VenueForm{GoalsForAvg: 0.0, GoalsAgainstAvg: 9.0, Matches: 2}

	est := EstimateRatesFromForm(homeForm, awayForm, cfg)
	// raw home = 9.0, blended 7.1125, clamped to the form ceiling.
	assert.Equal(t, cfg.FormRateCeiling, est.Home)
	// raw away = 0.0, blended 0.2875, inside both bands.
	assert.InDelta(t, cfg.DefaultAwayRate*(1-cfg.BlendWeight), est.Away, 1e-12)
}

func TestOverrideRatesClamps(t *testing.T) {
	cfg := DefaultConfig()
	est := OverrideRates(9.9, 0.01, cfg)
	assert.Equal(t, cfg.RateCeiling, est.Home)
	assert.Equal(t, cfg.RateFloor, est.Away)

	est = OverrideRates(1.8, 1.2, cfg)
	assert.Equal(t, 1.8, est.Home)
	assert.Equal(t, 1.2, est.Away)
}

func TestGoalRateEstimateTotal(t *testing.T) {
	assert.InDelta(t, 2.5, GoalRateEstimate{Home: 1.4, Away: 1.1}.Total(), 1e-12)
}
