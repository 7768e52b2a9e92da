package picks

import (
	"fmt"
	"time"
)

// FixtureStatus is the simplified lifecycle of a fixture.
type FixtureStatus string

const (
	StatusScheduled FixtureStatus = "scheduled"
	StatusLive      FixtureStatus = "live"
	StatusFinished  FixtureStatus = "finished"
)

// Compile-time check that Fixture persists through the store.
var _ Persistable = (*Fixture)(nil)

// Fixture is a scheduled or completed two-team match. Goal counts default
// to -1 so a valid 0 is distinguishable from "not yet known".
type Fixture struct {
	League string `json:"league" column:"league" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	ID     int64  `json:"matchId" column:"match_id" dbtype:"INTEGER NOT NULL" primary:"true"`

	UTCTime time.Time     `json:"utcDate" column:"utc_date" dbtype:"DATETIME" index:"true"`
	Status  FixtureStatus `json:"status" column:"status" dbtype:"TEXT" index:"true"`

	HomeTeam string `json:"home" column:"home" dbtype:"TEXT NOT NULL"`
	AwayTeam string `json:"away" column:"away" dbtype:"TEXT NOT NULL"`
	HomeID   int64  `json:"homeId" column:"home_id" dbtype:"INTEGER DEFAULT -1" index:"true"`
	AwayID   int64  `json:"awayId" column:"away_id" dbtype:"INTEGER DEFAULT -1" index:"true"`

	HomeGoals int `json:"homeGoals" column:"home_goals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int `json:"awayGoals" column:"away_goals" dbtype:"INTEGER DEFAULT -1"`

	// Externally supplied expected goals; when both are set they bypass
	// strength estimation entirely (still clamped into the rate band).
	RateOverrideHome float64 `json:"xgHome,omitempty" column:"xg_home_override" dbtype:"REAL DEFAULT -1.0"`
	RateOverrideAway float64 `json:"xgAway,omitempty" column:"xg_away_override" dbtype:"REAL DEFAULT -1.0"`

	LastUpdated time.Time `json:"lastUpdated" column:"last_updated" dbtype:"DATETIME"`
}

// NewFixture returns a fixture with the sentinel defaults in place.
func NewFixture() *Fixture {
	return &Fixture{
		HomeID:           -1,
		AwayID:           -1,
		HomeGoals:        -1,
		AwayGoals:        -1,
		RateOverrideHome: -1.0,
		RateOverrideAway: -1.0,
	}
}

// HasScore reports whether both full-time goal counts are known.
func (f *Fixture) HasScore() bool {
	return f.HomeGoals >= 0 && f.AwayGoals >= 0
}

// IsFinished reports whether the fixture has completed.
func (f *Fixture) IsFinished() bool {
	return f.Status == StatusFinished || f.HasScore()
}

// IsScheduled reports whether the fixture is still in the future.
func (f *Fixture) IsScheduled() bool {
	return !f.HasScore() && f.Status == StatusScheduled
}

// HasRateOverrides reports whether both expected-goals overrides are set.
func (f *Fixture) HasRateOverrides() bool {
	return f.RateOverrideHome >= 0 && f.RateOverrideAway >= 0
}

// Score renders the final score, empty until the fixture has one.
func (f *Fixture) Score() string {
	if !f.HasScore() {
		return ""
	}
	return fmt.Sprintf("%d-%d", f.HomeGoals, f.AwayGoals)
}

// DeriveStatus fills in Status from the score and kickoff time when the
// feed did not provide one.
func (f *Fixture) DeriveStatus(now time.Time) {
	if f.Status != "" {
		return
	}
	switch {
	case f.HasScore():
		f.Status = StatusFinished
	case f.UTCTime.Before(now):
		f.Status = StatusLive
	default:
		f.Status = StatusScheduled
	}
}

/////////////////////////////////////////////////////////////////////////
////// Persistable implementation
/////////////////////////////////////////////////////////////////////////

func (f *Fixture) GetTableName() string {
	return "fixtures"
}

func (f *Fixture) GetPrimaryKey() map[string]any {
	return map[string]any{
		"league":   f.League,
		"match_id": f.ID,
	}
}

func (f *Fixture) BeforeSave() error {
	f.DeriveStatus(time.Now())
	f.LastUpdated = time.Now().UTC()
	return nil
}

func (f *Fixture) AfterSave() error {
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Team history
/////////////////////////////////////////////////////////////////////////

// Venue is the side a team played from in a historical record.
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// TeamMatchRecord is one finished match seen from a single team's
// perspective. Immutable once recorded.
type TeamMatchRecord struct {
	Opponent     int64     `json:"opponentId"`
	Venue        Venue     `json:"venue"`
	GoalsFor     int       `json:"goalsFor"`
	GoalsAgainst int       `json:"goalsAgainst"`
	Date         time.Time `json:"date"`
}

// Valid reports whether the record carries usable goal counts. Malformed
// rows are skipped during aggregation, never fatal.
func (r TeamMatchRecord) Valid() bool {
	return r.GoalsFor >= 0 && r.GoalsAgainst >= 0
}

// RecordFromFixture views a finished fixture from one team's perspective.
// The boolean result is false when the team did not take part or the
// fixture has no score.
func RecordFromFixture(f *Fixture, teamID int64) (TeamMatchRecord, bool) {
	if f == nil || !f.HasScore() {
		return TeamMatchRecord{}, false
	}
	switch teamID {
	case f.HomeID:
		return TeamMatchRecord{
			Opponent:     f.AwayID,
			Venue:        VenueHome,
			GoalsFor:     f.HomeGoals,
			GoalsAgainst: f.AwayGoals,
			Date:         f.UTCTime,
		}, true
	case f.AwayID:
		return TeamMatchRecord{
			Opponent:     f.HomeID,
			Venue:        VenueAway,
			GoalsFor:     f.AwayGoals,
			GoalsAgainst: f.HomeGoals,
			Date:         f.UTCTime,
		}, true
	default:
		return TeamMatchRecord{}, false
	}
}
