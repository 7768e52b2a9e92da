package picks

import "sort"

// SelectBest reduces a candidate list to the single recommended market, or
// nil when the list is empty.
//
// Draws are only recommended on a clear statistical edge: the draw
// candidate must beat the best non-draw probability by at least
// drawEdge. Otherwise candidates within similar of the top probability
// count as practically tied, and among those the market priority tiers
// decide: double-chance first, then straight results, totals, BTTS, with
// draw last. Within a tier the higher probability wins.
func SelectBest(candidates []Candidate, similar, drawEdge float64) *Candidate {
	if len(candidates) == 0 {
		return nil
	}

	maxProb := 0.0
	maxNonDraw := 0.0
	var bestDraw *Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Probability > maxProb {
			maxProb = c.Probability
		}
		if c.Market.IsDraw() {
			if bestDraw == nil {
				bestDraw = c
			}
			continue
		}
		if c.Probability > maxNonDraw {
			maxNonDraw = c.Probability
		}
	}

	if bestDraw != nil && bestDraw.Probability >= maxNonDraw+drawEdge {
		picked := *bestDraw
		return &picked
	}

	var tied []Candidate
	for _, c := range candidates {
		if c.Probability >= maxProb-similar {
			tied = append(tied, c)
		}
	}
	if len(tied) == 0 {
		picked := candidates[0]
		return &picked
	}

	sort.SliceStable(tied, func(i, j int) bool {
		pi, pj := tied[i].Market.Priority(), tied[j].Market.Priority()
		if pi != pj {
			return pi < pj
		}
		return tied[i].Probability > tied[j].Probability
	})

	picked := tied[0]
	return &picked
}
