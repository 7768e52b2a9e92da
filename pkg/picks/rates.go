package picks

// GoalRateEstimate is the pair of Poisson rate parameters for one fixture,
// already clamped into the configured band.
type GoalRateEstimate struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Total returns the combined expected goals.
func (g GoalRateEstimate) Total() float64 {
	return g.Home + g.Away
}

// EstimateRates combines the league baselines with the two teams' strength
// multipliers:
//
//	lambda_home = avg_home x attack_home(home) x defense_away(away)
//	lambda_away = avg_away x attack_away(away) x defense_home(home)
//
// A team absent from the strengths map (insufficient window data) degrades
// the whole fixture to the unmodified baselines; this is the designed
// fallback, not an error.
func EstimateRates(homeID, awayID int64, strengths map[int64]TeamStrength, baselines LeagueBaselines, cfg *Config) GoalRateEstimate {
	home, homeOK := strengths[homeID]
	away, awayOK := strengths[awayID]

	lambdaHome := baselines.HomeGoals
	lambdaAway := baselines.AwayGoals
	if homeOK && awayOK {
		lambdaHome = baselines.HomeGoals * home.AttackHome * away.DefenseAway
		lambdaAway = baselines.AwayGoals * away.AttackAway * home.DefenseHome
	}

	return GoalRateEstimate{
		Home: clamp(lambdaHome, cfg.RateFloor, cfg.RateCeiling),
		Away: clamp(lambdaAway, cfg.RateFloor, cfg.RateCeiling),
	}
}

// EstimateRatesFromForm derives the rate pair from recency-weighted venue
// form: the home side's scoring at home against the away side's conceding
// away, and vice versa. The raw estimate is blended with the configured
// defaults to stabilize small samples, clamped to the form band, then into
// the final rate band. Either side with no usable records degrades to the
// defaults.
func EstimateRatesFromForm(homeForm, awayForm VenueForm, cfg *Config) GoalRateEstimate {
	if homeForm.Matches == 0 || awayForm.Matches == 0 {
		return GoalRateEstimate{
			Home: clamp(cfg.DefaultHomeRate, cfg.RateFloor, cfg.RateCeiling),
			Away: clamp(cfg.DefaultAwayRate, cfg.RateFloor, cfg.RateCeiling),
		}
	}

	rawHome := (homeForm.GoalsForAvg + awayForm.GoalsAgainstAvg) / 2.0
	rawAway := (awayForm.GoalsForAvg + homeForm.GoalsAgainstAvg) / 2.0

	w := cfg.BlendWeight
	lambdaHome := rawHome*w + cfg.DefaultHomeRate*(1.0-w)
	lambdaAway := rawAway*w + cfg.DefaultAwayRate*(1.0-w)

	lambdaHome = clamp(lambdaHome, cfg.FormRateFloor, cfg.FormRateCeiling)
	lambdaAway = clamp(lambdaAway, cfg.FormRateFloor, cfg.FormRateCeiling)

	return GoalRateEstimate{
		Home: clamp(lambdaHome, cfg.RateFloor, cfg.RateCeiling),
		Away: clamp(lambdaAway, cfg.RateFloor, cfg.RateCeiling),
	}
}

// OverrideRates clamps externally supplied expected goals into the band.
func OverrideRates(home, away float64, cfg *Config) GoalRateEstimate {
	return GoalRateEstimate{
		Home: clamp(home, cfg.RateFloor, cfg.RateCeiling),
		Away: clamp(away, cfg.RateFloor, cfg.RateCeiling),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
