package picks

import (
	"math"
	"sort"
)

// Candidate is a market that cleared the confidence threshold, with its
// modeled probability and the zero-margin price implied by it.
type Candidate struct {
	Market      Market  `json:"market"`
	Probability float64 `json:"prob"`
	FairOdds    float64 `json:"fair,omitempty"`
}

// FairOdds returns 1/p rounded to two decimals, or 0 when the probability
// carries no information to price.
func FairOdds(prob float64) float64 {
	if prob <= 0 {
		return 0
	}
	return math.Round(100.0/prob) / 100.0
}

// BuildCandidates walks the catalogue in canonical order and keeps every
// market whose probability meets minProb, ranked by descending probability.
// The sort is stable so equal probabilities keep catalogue order and the
// output is deterministic. An empty result is a valid answer: the fixture
// simply has no confident market.
func BuildCandidates(probs MarketProbabilities, minProb float64) []Candidate {
	var out []Candidate
	for _, market := range Catalogue {
		p := probs[market]
		if p < minProb {
			continue
		}
		out = append(out, Candidate{
			Market:      market,
			Probability: p,
			FairOdds:    FairOdds(p),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}
