package picks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aftr/aftr/internal/logger"
	"github.com/aftr/aftr/pkg/transport"
)

// Datasource fetches fixture and result data from football-data.org,
// caching every response on disk. When no API key is configured it falls
// back to scraping the embedded JSON from a league overview page.
type Datasource struct {
	cfg     *Config
	BaseURL string
	PageURL string
}

// NewDatasource returns a datasource bound to cfg with the cache
// directory created.
func NewDatasource(cfg *Config) (*Datasource, error) {
	if err := os.MkdirAll(cfg.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Datasource{
		cfg:     cfg,
		BaseURL: "https://api.football-data.org/v4",
		PageURL: "https://www.fotmob.com/en-GB/leagues",
	}, nil
}

/////////////////////////////////////////////////////////////////////////
////// football-data.org wire format
/////////////////////////////////////////////////////////////////////////

type fdTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type fdScore struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type fdMatch struct {
	ID       int64     `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam fdTeam    `json:"homeTeam"`
	AwayTeam fdTeam    `json:"awayTeam"`
	Score    fdScore   `json:"score"`
}

type fdMatchesResponse struct {
	Matches []fdMatch `json:"matches"`
}

func statusFromFeed(s string) FixtureStatus {
	switch s {
	case "SCHEDULED", "TIMED", "POSTPONED":
		return StatusScheduled
	case "IN_PLAY", "PAUSED", "LIVE":
		return StatusLive
	case "FINISHED":
		return StatusFinished
	default:
		return ""
	}
}

func (m fdMatch) toFixture(league string) *Fixture {
	f := NewFixture()
	f.League = league
	f.ID = m.ID
	f.UTCTime = m.UTCDate
	f.Status = statusFromFeed(m.Status)
	f.HomeTeam = m.HomeTeam.Name
	f.AwayTeam = m.AwayTeam.Name
	f.HomeID = m.HomeTeam.ID
	f.AwayID = m.AwayTeam.ID
	if m.Score.FullTime.Home != nil && m.Score.FullTime.Away != nil {
		f.HomeGoals = *m.Score.FullTime.Home
		f.AwayGoals = *m.Score.FullTime.Away
	}
	return f
}

/////////////////////////////////////////////////////////////////////////
////// Fetching
/////////////////////////////////////////////////////////////////////////

// UpcomingFixtures returns the league's scheduled fixtures inside the
// configured upcoming window. Without an API key the league page
// fallback is used instead.
func (d *Datasource) UpcomingFixtures(league string) ([]*Fixture, error) {
	if d.cfg.APIKey == "" {
		logger.Warn("No API key configured, scraping league page for", league)
		return d.LeaguePageFixtures(league)
	}

	now := time.Now().UTC()
	url := fmt.Sprintf("%s/competitions/%s/matches?status=SCHEDULED,TIMED&dateFrom=%s&dateTo=%s",
		d.BaseURL, league,
		now.Format("2006-01-02"),
		now.AddDate(0, 0, d.cfg.UpcomingDays).Format("2006-01-02"))

	return d.fetchFixtures(league, "upcoming", url)
}

// FinishedFixtures returns the league's finished fixtures from the
// settlement lookback window. Rows without a full-time score are skipped.
func (d *Datasource) FinishedFixtures(league string) ([]*Fixture, error) {
	if d.cfg.APIKey == "" {
		fixtures, err := d.LeaguePageFixtures(league)
		if err != nil {
			return nil, err
		}
		var finished []*Fixture
		for _, f := range fixtures {
			if f.HasScore() {
				finished = append(finished, f)
			}
		}
		return finished, nil
	}

	now := time.Now().UTC()
	url := fmt.Sprintf("%s/competitions/%s/matches?status=FINISHED&dateFrom=%s&dateTo=%s",
		d.BaseURL, league,
		now.AddDate(0, 0, -d.cfg.SettlementDays).Format("2006-01-02"),
		now.Format("2006-01-02"))

	fixtures, err := d.fetchFixtures(league, "finished", url)
	if err != nil {
		return nil, err
	}

	var finished []*Fixture
	for _, f := range fixtures {
		if !f.HasScore() {
			logger.Debug("Skipping finished fixture without score", f.League, f.ID)
			continue
		}
		finished = append(finished, f)
	}
	return finished, nil
}

// TeamRecords returns a team's recent finished matches as per-team
// records, most recent first, capped at the configured record limit.
// Malformed rows are skipped, never fatal.
func (d *Datasource) TeamRecords(teamID int64) ([]TeamMatchRecord, error) {
	now := time.Now().UTC()
	url := fmt.Sprintf("%s/teams/%d/matches?status=FINISHED&dateFrom=%s&dateTo=%s",
		d.BaseURL, teamID,
		now.AddDate(0, 0, -d.cfg.LookbackDays).Format("2006-01-02"),
		now.Format("2006-01-02"))

	body, err := d.fetchJSON(fmt.Sprintf("team-%d", teamID), url)
	if err != nil {
		return nil, err
	}

	var resp fdMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode team matches: %w", err)
	}

	var records []TeamMatchRecord
	for _, m := range resp.Matches {
		f := m.toFixture("")
		record, ok := RecordFromFixture(f, teamID)
		if !ok || !record.Valid() {
			logger.Debug("Skipping unusable record for team", teamID, m.ID)
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	if len(records) > d.cfg.RecordLimit {
		records = records[:d.cfg.RecordLimit]
	}
	return records, nil
}

func (d *Datasource) fetchFixtures(league, kind, url string) ([]*Fixture, error) {
	body, err := d.fetchJSON(fmt.Sprintf("%s-%s", league, kind), url)
	if err != nil {
		return nil, err
	}

	var resp fdMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode matches for %s: %w", league, err)
	}

	fixtures := make([]*Fixture, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m.ID == 0 || m.HomeTeam.ID == 0 || m.AwayTeam.ID == 0 {
			logger.Debug("Skipping malformed match row in", league)
			continue
		}
		fixtures = append(fixtures, m.toFixture(league))
	}
	return fixtures, nil
}

/////////////////////////////////////////////////////////////////////////
////// Caching transport
/////////////////////////////////////////////////////////////////////////

var cacheKeyPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func (d *Datasource) cacheFile(key string) string {
	return filepath.Join(d.cfg.CachePath, cacheKeyPattern.ReplaceAllString(key, "-")+".json")
}

// fetchJSON serves key from the disk cache while it is fresh, otherwise
// fetches url and rewrites the cache. A stale cache entry still serves
// as fallback when the fetch fails.
func (d *Datasource) fetchJSON(key, url string) ([]byte, error) {
	path := d.cacheFile(key)
	ttl := time.Duration(d.cfg.CacheTTLHrs) * time.Hour

	if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) < ttl {
		data, err := os.ReadFile(path)
		if err == nil {
			logger.Debug("Loaded from cache", path)
			return data, nil
		}
		logger.Warn("Failed to read cache file", path, err)
	}

	headers := map[string]string{}
	if d.cfg.APIKey != "" {
		headers["X-Auth-Token"] = d.cfg.APIKey
	}

	body, err := transport.Get(url, headers)
	if err != nil {
		if data, rerr := os.ReadFile(path); rerr == nil {
			logger.Warn("Fetch failed, serving stale cache", url, err)
			return data, nil
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if werr := os.WriteFile(path, body, 0644); werr != nil {
		logger.Warn("Failed to write cache file", path, werr)
	}
	return body, nil
}

/////////////////////////////////////////////////////////////////////////
////// League page fallback
/////////////////////////////////////////////////////////////////////////

// LeaguePageFixtures recovers fixtures from the JSON blob embedded in a
// league overview page. Coverage is thinner than the API (no rate
// overrides, anonymous team ids stay as published) but enough to run a
// refresh cycle without credentials.
func (d *Datasource) LeaguePageFixtures(league string) ([]*Fixture, error) {
	url := fmt.Sprintf("%s/%s/overview", d.PageURL, league)
	body, err := d.fetchJSON(fmt.Sprintf("%s-page", league), url)
	if err != nil {
		return nil, err
	}
	return ExtractEmbeddedFixtures(body, league)
}

type embeddedMatch struct {
	ID   int64 `json:"id"`
	Home struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"home"`
	Away struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"away"`
	Status struct {
		UTCTime  time.Time `json:"utcTime"`
		Started  bool      `json:"started"`
		Finished bool      `json:"finished"`
		ScoreStr string    `json:"scoreStr"`
	} `json:"status"`
}

// ExtractEmbeddedFixtures parses the script#__NEXT_DATA__ payload out of
// a league page and maps its match list onto fixtures.
func ExtractEmbeddedFixtures(htmlContent []byte, league string) ([]*Fixture, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlContent)))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	var scriptData string
	doc.Find("script#__NEXT_DATA__").Each(func(i int, s *goquery.Selection) {
		scriptData = s.Text()
	})
	if scriptData == "" {
		return nil, fmt.Errorf("could not find __NEXT_DATA__ script tag")
	}

	var payload struct {
		Props struct {
			PageProps struct {
				Matches struct {
					AllMatches []embeddedMatch `json:"allMatches"`
				} `json:"matches"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(scriptData), &payload); err != nil {
		return nil, fmt.Errorf("error parsing embedded JSON: %w", err)
	}

	matches := payload.Props.PageProps.Matches.AllMatches
	fixtures := make([]*Fixture, 0, len(matches))
	for _, m := range matches {
		if m.ID == 0 || m.Home.ID == 0 || m.Away.ID == 0 {
			logger.Debug("Skipping malformed embedded match in", league)
			continue
		}
		f := NewFixture()
		f.League = league
		f.ID = m.ID
		f.UTCTime = m.Status.UTCTime
		f.HomeTeam = m.Home.Name
		f.AwayTeam = m.Away.Name
		f.HomeID = m.Home.ID
		f.AwayID = m.Away.ID
		switch {
		case m.Status.Finished:
			f.Status = StatusFinished
			if hg, ag, ok := parseScoreStr(m.Status.ScoreStr); ok {
				f.HomeGoals = hg
				f.AwayGoals = ag
			}
		case m.Status.Started:
			f.Status = StatusLive
		default:
			f.Status = StatusScheduled
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

var scoreStrPattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

func parseScoreStr(s string) (int, int, bool) {
	m := scoreStrPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	var hg, ag int
	fmt.Sscanf(m[1], "%d", &hg)
	fmt.Sscanf(m[2], "%d", &ag)
	return hg, ag, true
}
