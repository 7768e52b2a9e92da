package picks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aftr/aftr/internal/logger"
)

// Compile-time check that Pick persists through the store.
var _ Persistable = (*Pick)(nil)

// Pick is a stored prediction for one fixture. It keeps the full market
// distribution and candidate list alongside the chosen best pick so the
// sheet can be re-rendered without re-running the model, and a settlement
// state which transitions away from PENDING exactly once.
type Pick struct {
	League  string `json:"league" column:"league" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	MatchID int64  `json:"matchId" column:"match_id" dbtype:"INTEGER NOT NULL" primary:"true"`

	HomeTeam string    `json:"home" column:"home" dbtype:"TEXT"`
	AwayTeam string    `json:"away" column:"away" dbtype:"TEXT"`
	KickOff  time.Time `json:"kickOff" column:"kick_off" dbtype:"DATETIME" index:"true"`

	HomeRate float64 `json:"homeRate" column:"home_rate" dbtype:"REAL"`
	AwayRate float64 `json:"awayRate" column:"away_rate" dbtype:"REAL"`

	ProbsJSON      string `json:"-" column:"probs_json" dbtype:"TEXT"`
	CandidatesJSON string `json:"-" column:"candidates_json" dbtype:"TEXT"`

	// Best market, empty when no candidate cleared the threshold.
	BestMarket  string  `json:"bestMarket" column:"best_market" dbtype:"TEXT"`
	Probability float64 `json:"probability" column:"probability" dbtype:"REAL"`
	FairOdds    float64 `json:"fairOdds" column:"fair_odds" dbtype:"REAL"`

	Result       Outcome `json:"result" column:"result" dbtype:"TEXT DEFAULT 'PENDING'" index:"true"`
	ResultReason string  `json:"resultReason,omitempty" column:"result_reason" dbtype:"TEXT"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`
	SettledAt time.Time `json:"settledAt,omitempty" column:"settled_at" dbtype:"DATETIME"`
}

func (p *Pick) GetTableName() string {
	return "picks"
}

func (p *Pick) GetPrimaryKey() map[string]any {
	return map[string]any{
		"league":   p.League,
		"match_id": p.MatchID,
	}
}

func (p *Pick) BeforeSave() error {
	if p.Result == "" {
		p.Result = ResultPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (p *Pick) AfterSave() error {
	return nil
}

// HasSelection reports whether the pick carries a recommended market.
func (p *Pick) HasSelection() bool {
	return p.BestMarket != ""
}

// IsPending reports whether the pick still awaits a result.
func (p *Pick) IsPending() bool {
	return p.Result == ResultPending || p.Result == ""
}

// Settle evaluates the pick against a final score. Only a PENDING pick
// settles; a second call is a no-op so results never flip after the fact.
// A pick without a selection settles as PUSH.
func (p *Pick) Settle(homeGoals, awayGoals int) bool {
	if !p.IsPending() {
		return false
	}
	if !p.HasSelection() {
		p.Result = ResultPush
		p.ResultReason = "No selection"
	} else {
		p.Result, p.ResultReason = EvaluateLabel(p.BestMarket, homeGoals, awayGoals)
	}
	p.SettledAt = time.Now().UTC()
	return true
}

// Candidates decodes the stored candidate list.
func (p *Pick) Candidates() []Candidate {
	if p.CandidatesJSON == "" {
		return nil
	}
	var out []Candidate
	if err := json.Unmarshal([]byte(p.CandidatesJSON), &out); err != nil {
		logger.Warn("Corrupt candidate list on pick", p.League, p.MatchID, err)
		return nil
	}
	return out
}

/////////////////////////////////////////////////////////////////////////
////// Predictor
/////////////////////////////////////////////////////////////////////////

// Prediction is the full model output for one fixture.
type Prediction struct {
	Rates         GoalRateEstimate    `json:"rates"`
	Probabilities MarketProbabilities `json:"probabilities"`
	Candidates    []Candidate         `json:"candidates"`
	Best          *Candidate          `json:"best,omitempty"`
}

// Predictor runs the scoreline model end to end for a fixture. It is
// stateless beyond its configuration and safe for concurrent use.
type Predictor struct {
	cfg *Config
}

// NewPredictor validates cfg and returns a ready predictor.
func NewPredictor(cfg *Config) (*Predictor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predictor config: %w", err)
	}
	return &Predictor{cfg: cfg}, nil
}

// PredictRates runs the model from an already-estimated goal-rate pair.
func (p *Predictor) PredictRates(rates GoalRateEstimate) Prediction {
	probs := ScorelineProbabilities(rates.Home, rates.Away, p.cfg.MaxGoals)
	candidates := BuildCandidates(probs, p.cfg.MinCandidateProb)
	best := SelectBest(candidates, p.cfg.SimilarThreshold, p.cfg.DrawEdgeThreshold)
	return Prediction{
		Rates:         rates,
		Probabilities: probs,
		Candidates:    candidates,
		Best:          best,
	}
}

// Predict runs the aggregate-strength model for a fixture. Fixture rate
// overrides take precedence over estimation when both sides carry one.
func (p *Predictor) Predict(f *Fixture, strengths map[int64]TeamStrength, baselines LeagueBaselines) Prediction {
	if f.HasRateOverrides() {
		return p.PredictRates(OverrideRates(f.RateOverrideHome, f.RateOverrideAway, p.cfg))
	}
	return p.PredictRates(EstimateRates(f.HomeID, f.AwayID, strengths, baselines, p.cfg))
}

// PredictFromHistory runs the recency-weighted venue-form model for a
// fixture from each team's recent record list.
func (p *Predictor) PredictFromHistory(f *Fixture, homeRecords, awayRecords []TeamMatchRecord) Prediction {
	if f.HasRateOverrides() {
		return p.PredictRates(OverrideRates(f.RateOverrideHome, f.RateOverrideAway, p.cfg))
	}
	homeForm := ComputeVenueForm(homeRecords, VenueHome, p.cfg.RecencyWeights)
	awayForm := ComputeVenueForm(awayRecords, VenueAway, p.cfg.RecencyWeights)
	return p.PredictRates(EstimateRatesFromForm(homeForm, awayForm, p.cfg))
}

// PickFor packages a prediction as a storable pick for the fixture.
func (p *Predictor) PickFor(f *Fixture, pred Prediction) (*Pick, error) {
	probsJSON, err := json.Marshal(pred.Probabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode probabilities: %w", err)
	}
	candidatesJSON, err := json.Marshal(pred.Candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidates: %w", err)
	}

	pick := &Pick{
		League:         f.League,
		MatchID:        f.ID,
		HomeTeam:       f.HomeTeam,
		AwayTeam:       f.AwayTeam,
		KickOff:        f.UTCTime,
		HomeRate:       pred.Rates.Home,
		AwayRate:       pred.Rates.Away,
		ProbsJSON:      string(probsJSON),
		CandidatesJSON: string(candidatesJSON),
		Result:         ResultPending,
	}
	if pred.Best != nil {
		pick.BestMarket = pred.Best.Market.String()
		pick.Probability = pred.Best.Probability
		pick.FairOdds = pred.Best.FairOdds
	}
	return pick, nil
}
