package picks

import "math"

// PoissonPMF returns P(k; lambda) = e^-lambda * lambda^k / k!.
// A zero rate is a point mass at zero goals; special-casing it avoids the
// 0^0 ambiguity of the naive formula.
func PoissonPMF(lambda float64, k int) float64 {
	if k < 0 {
		return 0.0
	}
	if lambda == 0 {
		if k == 0 {
			return 1.0
		}
		return 0.0
	}
	return math.Exp(-lambda) * math.Pow(lambda, float64(k)) / factorial(k)
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// MarketProbabilities maps every catalogue market to its modeled
// probability. Double-chance entries are always the additive combination of
// the primary three, never independently estimated.
type MarketProbabilities map[Market]float64

// ScorelineProbabilities builds the truncated joint scoreline table for the
// given goal rates and aggregates it into market probabilities.
//
// The table covers scores 0..maxGoals per side, so each market group misses
// the mass beyond the ceiling. Each group (1X2, totals, BTTS) is
// renormalized by its own subtotal so it remains a valid distribution on
// its own. Over 1.5 has no complementary market in the catalogue and keeps
// its raw truncated mass.
func ScorelineProbabilities(lambdaHome, lambdaAway float64, maxGoals int) MarketProbabilities {
	homePMF := make([]float64, maxGoals+1)
	awayPMF := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		homePMF[k] = PoissonPMF(lambdaHome, k)
		awayPMF[k] = PoissonPMF(lambdaAway, k)
	}

	var homeWin, draw, awayWin float64
	var under25, over25, over15 float64
	var bttsYes, bttsNo float64

	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			p := homePMF[h] * awayPMF[a]

			switch {
			case h > a:
				homeWin += p
			case h == a:
				draw += p
			default:
				awayWin += p
			}

			total := h + a
			if total <= 2 {
				under25 += p
			} else {
				over25 += p
			}
			if total >= 2 {
				over15 += p
			}

			if h >= 1 && a >= 1 {
				bttsYes += p
			} else {
				bttsNo += p
			}
		}
	}

	if s := homeWin + draw + awayWin; s > 0 {
		homeWin /= s
		draw /= s
		awayWin /= s
	}
	if s := under25 + over25; s > 0 {
		under25 /= s
		over25 /= s
	}
	if s := bttsYes + bttsNo; s > 0 {
		bttsYes /= s
		bttsNo /= s
	}

	return MarketProbabilities{
		MarketHomeWin:    homeWin,
		MarketDraw:       draw,
		MarketAwayWin:    awayWin,
		MarketHomeOrDraw: homeWin + draw,
		MarketDrawOrAway: awayWin + draw,
		MarketHomeOrAway: homeWin + awayWin,
		MarketOver15:     over15,
		MarketOver25:     over25,
		MarketUnder25:    under25,
		MarketBTTSYes:    bttsYes,
		MarketBTTSNo:     bttsNo,
	}
}
