package picks

import (
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/aftr/aftr/internal/logger"
)

// Refresher runs the full update cycle: pull fixtures, price the
// unplayed ones, settle the finished ones.
type Refresher struct {
	cfg        *Config
	datasource *Datasource
	predictor  *Predictor
}

// NewRefresher wires a refresher from cfg, opening the database and
// cache directory as side effects.
func NewRefresher(cfg *Config) (*Refresher, error) {
	if err := OpenDatabase(cfg.DatabasePath); err != nil {
		return nil, err
	}
	ds, err := NewDatasource(cfg)
	if err != nil {
		return nil, err
	}
	predictor, err := NewPredictor(cfg)
	if err != nil {
		return nil, err
	}
	return &Refresher{cfg: cfg, datasource: ds, predictor: predictor}, nil
}

// RunCycle refreshes every configured league. A league that fails leaves
// the others untouched; the first error is returned after all leagues
// have been attempted.
func (r *Refresher) RunCycle() error {
	var firstErr error
	for _, league := range r.cfg.Leagues {
		if err := r.RefreshLeague(league); err != nil {
			logger.Error("League refresh failed", league, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// RefreshLeague runs one cycle for a single league.
func (r *Refresher) RefreshLeague(league string) error {
	logger.Info("Refreshing league", league)

	finished, err := r.datasource.FinishedFixtures(league)
	if err != nil {
		return fmt.Errorf("failed to fetch finished fixtures for %s: %w", league, err)
	}
	upcoming, err := r.datasource.UpcomingFixtures(league)
	if err != nil {
		return fmt.Errorf("failed to fetch upcoming fixtures for %s: %w", league, err)
	}

	all := make([]Persistable, 0, len(finished)+len(upcoming))
	for _, f := range finished {
		all = append(all, f)
	}
	for _, f := range upcoming {
		all = append(all, f)
	}
	if err := BulkSave(all); err != nil {
		return fmt.Errorf("failed to save fixtures for %s: %w", league, err)
	}
	logger.Info("Saved fixtures", league, len(finished), "finished,", len(upcoming), "upcoming")

	// Strength snapshot comes from all stored finished fixtures of the
	// league, not just this cycle's batch.
	history, err := FindWhere[Fixture]("league = ? AND status = ?", league, StatusFinished)
	if err != nil {
		return fmt.Errorf("failed to load history for %s: %w", league, err)
	}
	baselines := ComputeLeagueBaselines(history, r.cfg.BaselineFallbackHome, r.cfg.BaselineFallbackAway)
	strengths := ComputeTeamStrengths(history, baselines)
	logger.Debug("Strength snapshot for", league, len(strengths), "teams from", len(history), "matches")

	var toPredict []*Fixture
	for _, f := range upcoming {
		if f.IsFinished() {
			continue
		}
		toPredict = append(toPredict, f)
	}

	picks := r.predictAll(toPredict, strengths, baselines)
	if err := r.savePicks(picks); err != nil {
		return err
	}

	settled, err := r.SettleLeague(league)
	if err != nil {
		return err
	}
	logger.Info("League refresh complete", league, len(picks), "picks,", settled, "settled")
	return nil
}

// predictAll fans fixture predictions out across a worker pool. The
// model is pure so workers share the strength snapshot without locking.
func (r *Refresher) predictAll(fixtures []*Fixture, strengths map[int64]TeamStrength, baselines LeagueBaselines) []*Pick {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan *Fixture, len(fixtures))
	resultCh := make(chan *Pick, len(fixtures))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range workCh {
				pred := r.predictFixture(f, strengths, baselines)
				pick, err := r.predictor.PickFor(f, pred)
				if err != nil {
					logger.Warn("Failed to build pick", f.HomeTeam, "vs", f.AwayTeam, err)
					continue
				}
				resultCh <- pick
			}
		}()
	}

	for _, f := range fixtures {
		workCh <- f
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var picks []*Pick
	for pick := range resultCh {
		picks = append(picks, pick)
	}
	return picks
}

// predictFixture prefers the aggregate-strength model; when either team
// is missing from the snapshot and an API key is available, recent
// per-team records feed the venue-form model instead.
func (r *Refresher) predictFixture(f *Fixture, strengths map[int64]TeamStrength, baselines LeagueBaselines) Prediction {
	_, homeKnown := strengths[f.HomeID]
	_, awayKnown := strengths[f.AwayID]
	if homeKnown && awayKnown || r.cfg.APIKey == "" {
		return r.predictor.Predict(f, strengths, baselines)
	}

	homeRecords, err := r.datasource.TeamRecords(f.HomeID)
	if err != nil {
		logger.Warn("Failed to fetch home records, using baselines", f.HomeTeam, err)
		return r.predictor.Predict(f, strengths, baselines)
	}
	awayRecords, err := r.datasource.TeamRecords(f.AwayID)
	if err != nil {
		logger.Warn("Failed to fetch away records, using baselines", f.AwayTeam, err)
		return r.predictor.Predict(f, strengths, baselines)
	}
	return r.predictor.PredictFromHistory(f, homeRecords, awayRecords)
}

// savePicks upserts picks for unplayed fixtures. An already settled pick
// is never overwritten; a still-pending one keeps its creation time.
func (r *Refresher) savePicks(picks []*Pick) error {
	var toSave []Persistable
	for _, pick := range picks {
		existing := &Pick{League: pick.League, MatchID: pick.MatchID}
		err := Load(existing)
		switch {
		case err == nil && !existing.IsPending():
			logger.Debug("Pick already settled, keeping", pick.League, pick.MatchID)
			continue
		case err == nil:
			pick.CreatedAt = existing.CreatedAt
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to load existing pick: %w", err)
		}
		toSave = append(toSave, pick)
	}
	if len(toSave) == 0 {
		return nil
	}
	if err := BulkSave(toSave); err != nil {
		return fmt.Errorf("failed to save picks: %w", err)
	}
	return nil
}

// SettleLeague joins the league's pending picks to the stored finished
// fixtures and settles each match. Working from the store rather than
// this cycle's fetch batch means a fixture that finished while the
// refresher was idle still settles its pick. Returns the number settled.
func (r *Refresher) SettleLeague(league string) (int, error) {
	pending, err := FindWhere[Pick]("league = ? AND result = ?", league, ResultPending)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending picks for %s: %w", league, err)
	}

	settled := 0
	for _, pick := range pending {
		fixture := &Fixture{League: pick.League, ID: pick.MatchID}
		if err := Load(fixture); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				logger.Warn("Pending pick has no stored fixture", pick.League, pick.MatchID)
				continue
			}
			return settled, fmt.Errorf("failed to load fixture for settlement: %w", err)
		}
		if !fixture.HasScore() {
			continue
		}
		if !pick.Settle(fixture.HomeGoals, fixture.AwayGoals) {
			continue
		}
		if err := Save(pick); err != nil {
			return settled, fmt.Errorf("failed to save settled pick: %w", err)
		}
		logger.Info("Settled", pick.BestMarket, "on", fixture.HomeTeam, "vs", fixture.AwayTeam,
			string(pick.Result), pick.ResultReason)
		settled++
	}
	return settled, nil
}

/////////////////////////////////////////////////////////////////////////
////// Reporting queries
/////////////////////////////////////////////////////////////////////////

// PendingPicks returns all unsettled picks ordered by kickoff.
func PendingPicks() ([]*Pick, error) {
	picks, err := FindWhere[Pick]("result = ?", ResultPending)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].KickOff.Before(picks[j].KickOff)
	})
	return picks, nil
}

// SettledPicks returns picks settled in the last n days, newest first.
func SettledPicks(days int) ([]*Pick, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	picks, err := FindWhere[Pick]("result != ? AND settled_at >= ?", ResultPending, cutoff)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].SettledAt.After(picks[j].SettledAt)
	})
	return picks, nil
}
