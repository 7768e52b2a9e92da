package picks

import "fmt"

// Outcome is the settlement state of a pick.
type Outcome string

const (
	ResultPending Outcome = "PENDING"
	ResultWin     Outcome = "WIN"
	ResultLoss    Outcome = "LOSS"
	ResultPush    Outcome = "PUSH"
)

// EvaluateLabel settles a free-text market label against a final score.
// Unrecognized labels settle as PUSH; upstream data may contain anything
// and settlement must never throw a fixture away over a string.
func EvaluateLabel(label string, homeGoals, awayGoals int) (Outcome, string) {
	return Evaluate(ParseMarket(label), homeGoals, awayGoals)
}

// Evaluate classifies a market as WIN or LOSS given the final score, with a
// short human-readable reason. Only MarketUnsupported produces a PUSH.
func Evaluate(market Market, homeGoals, awayGoals int) (Outcome, string) {
	hg, ag := homeGoals, awayGoals
	if hg < 0 {
		hg = 0
	}
	if ag < 0 {
		ag = 0
	}

	score := fmt.Sprintf("%d-%d", hg, ag)
	total := hg + ag

	switch market {
	case MarketHomeWin:
		return winIf(hg > ag), score
	case MarketAwayWin:
		return winIf(ag > hg), score
	case MarketDraw:
		return winIf(hg == ag), score
	case MarketHomeOrDraw:
		return winIf(hg >= ag), score
	case MarketDrawOrAway:
		return winIf(ag >= hg), score
	case MarketHomeOrAway:
		if hg != ag {
			return ResultWin, score
		}
		return ResultLoss, fmt.Sprintf("%s (draw)", score)
	case MarketUnder25:
		if total <= 2 {
			return ResultWin, fmt.Sprintf("Total %d (<=2)", total)
		}
		return ResultLoss, fmt.Sprintf("Total %d (>=3)", total)
	case MarketOver25:
		if total >= 3 {
			return ResultWin, fmt.Sprintf("Total %d (>=3)", total)
		}
		return ResultLoss, fmt.Sprintf("Total %d (<=2)", total)
	case MarketOver15:
		if total >= 2 {
			return ResultWin, fmt.Sprintf("Total %d (>=2)", total)
		}
		return ResultLoss, fmt.Sprintf("Total %d (<=1)", total)
	case MarketBTTSYes:
		return winIf(hg >= 1 && ag >= 1), fmt.Sprintf("HG %d / AG %d", hg, ag)
	case MarketBTTSNo:
		return winIf(hg == 0 || ag == 0), fmt.Sprintf("HG %d / AG %d", hg, ag)
	default:
		return ResultPush, "Market not supported"
	}
}

func winIf(won bool) Outcome {
	if won {
		return ResultWin
	}
	return ResultLoss
}
