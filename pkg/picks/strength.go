package picks

// LeagueBaselines holds the league-wide average goals scored by home sides
// and by away sides over the lookback window.
type LeagueBaselines struct {
	HomeGoals float64 `json:"homeGoals"`
	AwayGoals float64 `json:"awayGoals"`
	Matches   int     `json:"matches"`
}

// TeamStrength holds the four dimensionless multipliers describing a team
// relative to the league average (1.0 in every dimension). Only teams with
// at least one home and one away appearance in the window get an entry.
type TeamStrength struct {
	AttackHome  float64 `json:"attackHome"`
	DefenseHome float64 `json:"defenseHome"`
	AttackAway  float64 `json:"attackAway"`
	DefenseAway float64 `json:"defenseAway"`

	HomeScoredAvg   float64 `json:"homeScoredAvg"`
	HomeConcededAvg float64 `json:"homeConcededAvg"`
	AwayScoredAvg   float64 `json:"awayScoredAvg"`
	AwayConcededAvg float64 `json:"awayConcededAvg"`

	HomeGames int `json:"homeGames"`
	AwayGames int `json:"awayGames"`
}

// VenueForm is a recency-weighted goals-for/goals-against average for one
// team at one venue.
type VenueForm struct {
	GoalsForAvg     float64 `json:"goalsForAvg"`
	GoalsAgainstAvg float64 `json:"goalsAgainstAvg"`
	Matches         int     `json:"matches"`
}

// ComputeLeagueBaselines averages goals over the finished fixtures of the
// window. Fixtures without a score are skipped. An empty window yields the
// configured fallbacks so downstream division stays safe.
func ComputeLeagueBaselines(finished []*Fixture, fallbackHome, fallbackAway float64) LeagueBaselines {
	var homeTotal, awayTotal, games int

	for _, f := range finished {
		if f == nil || !f.HasScore() {
			continue
		}
		homeTotal += f.HomeGoals
		awayTotal += f.AwayGoals
		games++
	}

	if games == 0 {
		return LeagueBaselines{HomeGoals: fallbackHome, AwayGoals: fallbackAway}
	}
	return LeagueBaselines{
		HomeGoals: float64(homeTotal) / float64(games),
		AwayGoals: float64(awayTotal) / float64(games),
		Matches:   games,
	}
}

// teamTally accumulates raw goal counts for one team during aggregation.
type teamTally struct {
	homeScored, homeConceded, homeGames int
	awayScored, awayConceded, awayGames int
}

// ComputeTeamStrengths derives attack/defense multipliers for every team in
// the window by dividing each venue average by the matching league
// baseline. Teams missing either venue are excluded entirely; callers fall
// back to baseline-only estimation for those.
func ComputeTeamStrengths(finished []*Fixture, baselines LeagueBaselines) map[int64]TeamStrength {
	tallies := make(map[int64]*teamTally)

	tally := func(id int64) *teamTally {
		t, ok := tallies[id]
		if !ok {
			t = &teamTally{}
			tallies[id] = t
		}
		return t
	}

	for _, f := range finished {
		if f == nil || !f.HasScore() || f.HomeID < 0 || f.AwayID < 0 {
			continue
		}

		home := tally(f.HomeID)
		home.homeScored += f.HomeGoals
		home.homeConceded += f.AwayGoals
		home.homeGames++

		away := tally(f.AwayID)
		away.awayScored += f.AwayGoals
		away.awayConceded += f.HomeGoals
		away.awayGames++
	}

	strengths := make(map[int64]TeamStrength, len(tallies))
	for id, t := range tallies {
		if t.homeGames == 0 || t.awayGames == 0 {
			continue
		}

		s := TeamStrength{
			HomeScoredAvg:   float64(t.homeScored) / float64(t.homeGames),
			HomeConcededAvg: float64(t.homeConceded) / float64(t.homeGames),
			AwayScoredAvg:   float64(t.awayScored) / float64(t.awayGames),
			AwayConcededAvg: float64(t.awayConceded) / float64(t.awayGames),
			HomeGames:       t.homeGames,
			AwayGames:       t.awayGames,
		}

		// Home attack scores against away defenses and vice versa, so each
		// ratio divides by the opposite venue's baseline.
		s.AttackHome = ratioOrNeutral(s.HomeScoredAvg, baselines.HomeGoals)
		s.DefenseHome = ratioOrNeutral(s.HomeConcededAvg, baselines.AwayGoals)
		s.AttackAway = ratioOrNeutral(s.AwayScoredAvg, baselines.AwayGoals)
		s.DefenseAway = ratioOrNeutral(s.AwayConcededAvg, baselines.HomeGoals)

		strengths[id] = s
	}

	return strengths
}

// ratioOrNeutral divides avg by the baseline, returning the league-average
// multiplier when the baseline cannot be divided by.
func ratioOrNeutral(avg, baseline float64) float64 {
	if baseline <= 0 {
		return 1.0
	}
	return avg / baseline
}

// ComputeVenueForm restricts records to one venue and produces a
// recency-weighted goals average. Records are expected most-recent-first;
// the weight schedule is indexed by overall position so a long gap since
// the last appearance at the venue naturally discounts it. Records beyond
// the schedule weigh 1.0 and malformed records are skipped.
func ComputeVenueForm(records []TeamMatchRecord, venue Venue, weights []float64) VenueForm {
	var goalsFor, goalsAgainst, weightSum float64
	var n int

	for i, r := range records {
		if r.Venue != venue || !r.Valid() {
			continue
		}
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		goalsFor += float64(r.GoalsFor) * w
		goalsAgainst += float64(r.GoalsAgainst) * w
		weightSum += w
		n++
	}

	if n == 0 || weightSum == 0 {
		return VenueForm{}
	}
	return VenueForm{
		GoalsForAvg:     goalsFor / weightSum,
		GoalsAgainstAvg: goalsAgainst / weightSum,
		Matches:         n,
	}
}
