package picks

import (
	"encoding/json"
	"strings"
)

// Market is the closed set of betting propositions the engine prices and
// settles. Upstream feeds and stored picks carry free-text labels, so every
// string entering the engine passes through ParseMarket; anything that does
// not map onto the catalogue becomes MarketUnsupported and settles as PUSH.
type Market int

const (
	MarketUnsupported Market = iota
	MarketHomeWin
	MarketDraw
	MarketAwayWin
	MarketHomeOrDraw // 1X
	MarketDrawOrAway // X2
	MarketHomeOrAway // 12
	MarketOver15
	MarketOver25
	MarketUnder25
	MarketBTTSYes
	MarketBTTSNo
)

// Catalogue lists every supported market in its canonical candidate order.
var Catalogue = []Market{
	MarketHomeWin,
	MarketDraw,
	MarketAwayWin,
	MarketHomeOrDraw,
	MarketDrawOrAway,
	MarketHomeOrAway,
	MarketOver15,
	MarketOver25,
	MarketUnder25,
	MarketBTTSYes,
	MarketBTTSNo,
}

var marketNames = map[Market]string{
	MarketHomeWin:    "Home Win",
	MarketDraw:       "Draw",
	MarketAwayWin:    "Away Win",
	MarketHomeOrDraw: "1X",
	MarketDrawOrAway: "X2",
	MarketHomeOrAway: "12",
	MarketOver15:     "Over 1.5",
	MarketOver25:     "Over 2.5",
	MarketUnder25:    "Under 2.5",
	MarketBTTSYes:    "BTTS Yes",
	MarketBTTSNo:     "BTTS No",
}

func (m Market) String() string {
	if name, ok := marketNames[m]; ok {
		return name
	}
	return "Unsupported"
}

func (m Market) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Market) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = ParseMarket(s)
	return nil
}

// MarshalText keeps map keys readable when a MarketProbabilities table is
// encoded to JSON.
func (m Market) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Market) UnmarshalText(text []byte) error {
	*m = ParseMarket(string(text))
	return nil
}

// Priority returns the selection tier for tie-breaking, lower is preferred.
// Double-chance covers two outcomes so it is the safest recommendation;
// draw sits last and is only ever picked on a clear probability edge.
func (m Market) Priority() int {
	switch m {
	case MarketHomeOrDraw, MarketDrawOrAway:
		return 0
	case MarketHomeWin, MarketAwayWin, MarketHomeOrAway:
		return 1
	case MarketOver15, MarketOver25, MarketUnder25:
		return 2
	case MarketBTTSYes, MarketBTTSNo:
		return 3
	case MarketDraw:
		return 4
	default:
		return 5
	}
}

// IsDraw reports whether the market is the straight draw.
func (m Market) IsDraw() bool {
	return m == MarketDraw
}

// ParseMarket maps a display label onto its catalogue variant. Matching is
// case-insensitive and tolerant of the label variants older feeds used,
// including Spanish-language aliases.
func ParseMarket(label string) Market {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return MarketUnsupported
	}

	switch s {
	case "home win":
		return MarketHomeWin
	case "away win":
		return MarketAwayWin
	case "draw":
		return MarketDraw
	case "1x":
		return MarketHomeOrDraw
	case "x2":
		return MarketDrawOrAway
	case "12":
		return MarketHomeOrAway
	case "over 1.5":
		return MarketOver15
	case "over 2.5":
		return MarketOver25
	case "under 2.5":
		return MarketUnder25
	case "btts yes":
		return MarketBTTSYes
	case "btts no":
		return MarketBTTSNo
	}

	// Substring fallbacks, ordered so the more specific labels win.
	switch {
	case strings.Contains(s, "home win"), strings.Contains(s, "local"):
		return MarketHomeWin
	case strings.Contains(s, "away win"), strings.Contains(s, "visitante"):
		return MarketAwayWin
	case strings.Contains(s, "draw"), strings.Contains(s, "empate"):
		return MarketDraw
	case strings.Contains(s, "1x"):
		return MarketHomeOrDraw
	case strings.Contains(s, "x2"):
		return MarketDrawOrAway
	case strings.Contains(s, "under 2.5"):
		return MarketUnder25
	case strings.Contains(s, "over 2.5"):
		return MarketOver25
	case strings.Contains(s, "over 1.5"):
		return MarketOver15
	case strings.Contains(s, "btts yes"), strings.Contains(s, "ambos marcan"):
		return MarketBTTSYes
	case strings.Contains(s, "btts no"):
		return MarketBTTSNo
	}

	return MarketUnsupported
}
