package picks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedFixture(homeID, awayID int64, hg, ag int) *Fixture {
	f := NewFixture()
	f.League = "PL"
	f.HomeID = homeID
	f.AwayID = awayID
	f.HomeGoals = hg
	f.AwayGoals = ag
	f.Status = StatusFinished
	return f
}

func TestComputeLeagueBaselines(t *testing.T) {
	fixtures := []*Fixture{
		finishedFixture(1, 2, 2, 0),
		finishedFixture(2, 1, 1, 1),
		finishedFixture(1, 3, 3, 2),
	}
	b := ComputeLeagueBaselines(fixtures, 1.50, 1.20)
	assert.InDelta(t, 2.0, b.HomeGoals, 1e-12) // (2+1+3)/3
	assert.InDelta(t, 1.0, b.AwayGoals, 1e-12) // (0+1+2)/3
	assert.Equal(t, 3, b.Matches)
}

func TestComputeLeagueBaselinesEmptyWindowFallsBack(t *testing.T) {
	b := ComputeLeagueBaselines(nil, 1.50, 1.20)
	assert.Equal(t, 1.50, b.HomeGoals)
	assert.Equal(t, 1.20, b.AwayGoals)
	assert.Equal(t, 0, b.Matches)
}

func TestComputeLeagueBaselinesSkipsUnscored(t *testing.T) {
	unscored := NewFixture()
	unscored.HomeID, unscored.AwayID = 1, 2

	b := ComputeLeagueBaselines([]*Fixture{unscored, finishedFixture(1, 2, 2, 1)}, 1.50, 1.20)
	assert.Equal(t, 1, b.Matches)
	assert.InDelta(t, 2.0, b.HomeGoals, 1e-12)
}

func TestComputeTeamStrengths(t *testing.T) {
	// Team 1: 2 home games (3 scored, 1 conceded), 1 away game (1 scored, 2 conceded).
	fixtures := []*Fixture{
		finishedFixture(1, 2, 2, 0),
		finishedFixture(1, 3, 1, 1),
		finishedFixture(2, 1, 2, 1),
		finishedFixture(3, 2, 0, 0),
	}
	baselines := ComputeLeagueBaselines(fixtures, 1.50, 1.20)
	strengths := ComputeTeamStrengths(fixtures, baselines)

	s, ok := strengths[1]
	require.True(t, ok)
	assert.Equal(t, 2, s.HomeGames)
	assert.Equal(t, 1, s.AwayGames)
	assert.InDelta(t, 1.5, s.HomeScoredAvg, 1e-12)
	assert.InDelta(t, 0.5, s.HomeConcededAvg, 1e-12)
	assert.InDelta(t, 1.0, s.AwayScoredAvg, 1e-12)
	assert.InDelta(t, 2.0, s.AwayConcededAvg, 1e-12)

	// Multipliers divide by the opposite venue's baseline.
	assert.InDelta(t, s.HomeScoredAvg/baselines.HomeGoals, s.AttackHome, 1e-12)
	assert.InDelta(t, s.HomeConcededAvg/baselines.AwayGoals, s.DefenseHome, 1e-12)
	assert.InDelta(t, s.AwayScoredAvg/baselines.AwayGoals, s.AttackAway, 1e-12)
	assert.InDelta(t, s.AwayConcededAvg/baselines.HomeGoals, s.DefenseAway, 1e-12)
}

func TestComputeTeamStrengthsRequiresBothVenues(t *testing.T) {
	// Team 4 only ever plays at home, team 5 only away.
	fixtures := []*Fixture{
		finishedFixture(4, 5, 1, 0),
		finishedFixture(4, 5, 2, 2),
	}
	baselines := ComputeLeagueBaselines(fixtures, 1.50, 1.20)
	strengths := ComputeTeamStrengths(fixtures, baselines)

	assert.NotContains(t, strengths, int64(4))
	assert.NotContains(t, strengths, int64(5))
}

func TestComputeVenueFormWeightsRecency(t *testing.T) {
	weights := []float64{1.50, 1.35, 1.25}
	records := []TeamMatchRecord{
		{Venue: VenueHome, GoalsFor: 3, GoalsAgainst: 0},
		{Venue: VenueHome, GoalsFor: 0, GoalsAgainst: 2},
	}

	form := ComputeVenueForm(records, VenueHome, weights)
	require.Equal(t, 2, form.Matches)
	// (3*1.50 + 0*1.35) / (1.50+1.35)
	assert.InDelta(t, 4.5/2.85, form.GoalsForAvg, 1e-12)
	// (0*1.50 + 2*1.35) / (1.50+1.35)
	assert.InDelta(t, 2.7/2.85, form.GoalsAgainstAvg, 1e-12)
}

func TestComputeVenueFormWeightIndexedByOverallPosition(t *testing.T) {
	weights := []float64{1.50, 1.35, 1.25}
	// The only home record sits third in the overall list, so it takes the
	// third weight even though it is the first home match.
	records := []TeamMatchRecord{
		{Venue: VenueAway, GoalsFor: 1, GoalsAgainst: 1},
		{Venue: VenueAway, GoalsFor: 0, GoalsAgainst: 0},
		{Venue: VenueHome, GoalsFor: 2, GoalsAgainst: 1},
	}

	form := ComputeVenueForm(records, VenueHome, weights)
	require.Equal(t, 1, form.Matches)
	assert.InDelta(t, 2.0, form.GoalsForAvg, 1e-12)
	assert.InDelta(t, 1.0, form.GoalsAgainstAvg, 1e-12)
}

func TestComputeVenueFormBeyondScheduleWeighsOne(t *testing.T) {
	weights := []float64{2.0}
	records := []TeamMatchRecord{
		{Venue: VenueHome, GoalsFor: 2, GoalsAgainst: 0},
		{Venue: VenueHome, GoalsFor: 0, GoalsAgainst: 0},
	}

	form := ComputeVenueForm(records, VenueHome, weights)
	// (2*2.0 + 0*1.0) / (2.0+1.0)
	assert.InDelta(t, 4.0/3.0, form.GoalsForAvg, 1e-12)
}

func TestComputeVenueFormSkipsMalformed(t *testing.T) {
	records := []TeamMatchRecord{
		{Venue: VenueHome, GoalsFor: -1, GoalsAgainst: 2},
		{Venue: VenueHome, GoalsFor: 1, GoalsAgainst: 0},
	}
	form := ComputeVenueForm(records, VenueHome, nil)
	assert.Equal(t, 1, form.Matches)
	assert.InDelta(t, 1.0, form.GoalsForAvg, 1e-12)
}

func TestComputeVenueFormEmpty(t *testing.T) {
	form := ComputeVenueForm(nil, VenueHome, nil)
	assert.Equal(t, VenueForm{}, form)
}
