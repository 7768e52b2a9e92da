package picks

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config centralizes every parameter that influences prediction outcomes.
// Components receive it explicitly; there is no global instance mutating
// results behind the caller's back.
type Config struct {
	// Leagues to refresh, football-data.org competition codes.
	Leagues []string `yaml:"leagues"`

	// === SCORELINE MODEL ===

	// MaxGoals is the truncation ceiling of the joint scoreline table:
	// scores 0..MaxGoals per side are considered.
	MaxGoals int `yaml:"maxGoals"`

	// === CANDIDATE SELECTION ===

	// MinCandidateProb is the minimum probability a market needs to be
	// offered as a candidate at all.
	MinCandidateProb float64 `yaml:"minCandidateProb"`
	// SimilarThreshold is the band below the top probability within which
	// candidates count as practically tied and priority decides.
	SimilarThreshold float64 `yaml:"similarThreshold"`
	// DrawEdgeThreshold is the probability edge a draw needs over the best
	// non-draw candidate before it can be recommended.
	DrawEdgeThreshold float64 `yaml:"drawEdgeThreshold"`

	// === GOAL RATES ===

	// RateFloor/RateCeiling clamp the final goal-rate pair so sparse
	// samples cannot extrapolate into degenerate lambdas.
	RateFloor   float64 `yaml:"rateFloor"`
	RateCeiling float64 `yaml:"rateCeiling"`

	// FormRateFloor/FormRateCeiling clamp the recency-weighted venue-form
	// estimate before it enters the final band.
	FormRateFloor   float64 `yaml:"formRateFloor"`
	FormRateCeiling float64 `yaml:"formRateCeiling"`

	// League-wide scoring averages used when the window holds no finished
	// matches at all.
	BaselineFallbackHome float64 `yaml:"baselineFallbackHome"`
	BaselineFallbackAway float64 `yaml:"baselineFallbackAway"`

	// Per-fixture defaults the venue-form estimate is blended against.
	DefaultHomeRate float64 `yaml:"defaultHomeRate"`
	DefaultAwayRate float64 `yaml:"defaultAwayRate"`

	// BlendWeight is the share of the computed venue-form value in the
	// blend with the defaults (the rest stabilizes small samples).
	BlendWeight float64 `yaml:"blendWeight"`

	// RecencyWeights multiply venue-form records most-recent-first; records
	// beyond the schedule weigh 1.0.
	RecencyWeights []float64 `yaml:"recencyWeights"`

	// === HISTORY WINDOW ===

	LookbackDays   int `yaml:"lookbackDays"`   // finished-match window per team
	RecordLimit    int `yaml:"recordLimit"`    // sample cap per team
	UpcomingDays   int `yaml:"upcomingDays"`   // how far ahead fixtures are pulled
	SettlementDays int `yaml:"settlementDays"` // how far back results are pulled

	// === COLLABORATORS ===

	APIKey       string `yaml:"apiKey"`
	DatabasePath string `yaml:"databasePath"`
	CachePath    string `yaml:"cachePath"`
	CacheTTLHrs  int    `yaml:"cacheTTLHours"`
	Workers      int    `yaml:"workers"` // 0 means NumCPU*2
	LogLevel     string `yaml:"logLevel"`
}

// DefaultConfig returns the canonical parameter set.
func DefaultConfig() *Config {
	return &Config{
		Leagues: []string{"PL"},

		MaxGoals: 8,

		MinCandidateProb:  0.50,
		SimilarThreshold:  0.03,
		DrawEdgeThreshold: 0.04,

		RateFloor:   0.1,
		RateCeiling: 4.5,

		FormRateFloor:   0.2,
		FormRateCeiling: 3.5,

		BaselineFallbackHome: 1.50,
		BaselineFallbackAway: 1.20,

		DefaultHomeRate: 1.45,
		DefaultAwayRate: 1.15,

		BlendWeight:    0.75,
		RecencyWeights: []float64{1.50, 1.35, 1.25, 1.15, 1.10, 1.05, 1.00, 1.00, 1.00, 1.00},

		LookbackDays:   30,
		RecordLimit:    10,
		UpcomingDays:   10,
		SettlementDays: 5,

		DatabasePath: "aftr.db",
		CachePath:    "data/cache",
		CacheTTLHrs:  12,
		LogLevel:     "INFO",
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file and AFTR_*
// environment variables, in that order of precedence. A .env file in the
// working directory is honoured when present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FOOTBALL_DATA_API_KEY"); v != "" {
		c.APIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("AFTR_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("AFTR_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v := os.Getenv("AFTR_LEAGUES"); v != "" {
		c.Leagues = splitCSV(v)
	}
	if v := os.Getenv("AFTR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.MinCandidateProb = envFloat("AFTR_MIN_PROB", c.MinCandidateProb)
	c.MaxGoals = envInt("AFTR_MAX_GOALS", c.MaxGoals)
	c.LookbackDays = envInt("AFTR_LOOKBACK_DAYS", c.LookbackDays)
	c.RecordLimit = envInt("AFTR_RECORD_LIMIT", c.RecordLimit)
	c.Workers = envInt("AFTR_WORKERS", c.Workers)
}

// Validate fails fast on configurations that would silently corrupt every
// downstream probability. Degraded data never errors; bad config always does.
func (c *Config) Validate() error {
	if c.MaxGoals < 3 {
		return fmt.Errorf("maxGoals must be at least 3 to cover realistic scores, got %d", c.MaxGoals)
	}
	for name, p := range map[string]float64{
		"minCandidateProb":  c.MinCandidateProb,
		"similarThreshold":  c.SimilarThreshold,
		"drawEdgeThreshold": c.DrawEdgeThreshold,
	} {
		if p < 0.0 || p > 1.0 {
			return fmt.Errorf("%s must be within [0,1], got %f", name, p)
		}
	}
	if c.RateFloor <= 0 || c.RateCeiling <= c.RateFloor {
		return fmt.Errorf("rate clamp band must satisfy 0 < floor < ceiling, got [%f, %f]", c.RateFloor, c.RateCeiling)
	}
	if c.FormRateFloor <= 0 || c.FormRateCeiling <= c.FormRateFloor {
		return fmt.Errorf("form clamp band must satisfy 0 < floor < ceiling, got [%f, %f]", c.FormRateFloor, c.FormRateCeiling)
	}
	if c.BlendWeight < 0.0 || c.BlendWeight > 1.0 {
		return fmt.Errorf("blendWeight must be within [0,1], got %f", c.BlendWeight)
	}
	if c.BaselineFallbackHome <= 0 || c.BaselineFallbackAway <= 0 {
		return fmt.Errorf("baseline fallbacks must be positive")
	}
	if c.DefaultHomeRate <= 0 || c.DefaultAwayRate <= 0 {
		return fmt.Errorf("default rates must be positive")
	}
	for i, w := range c.RecencyWeights {
		if w <= 0 {
			return fmt.Errorf("recencyWeights[%d] must be positive, got %f", i, w)
		}
	}
	if c.LookbackDays <= 0 || c.RecordLimit <= 0 {
		return fmt.Errorf("history window must be positive")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
