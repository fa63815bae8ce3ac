package models

import "math"

// SortKey selects the leaderboard ordering.
type SortKey string

const (
	SortByWins   SortKey = "wins"
	SortByWinPct SortKey = "win_pct"
)

// ParseSortKey accepts "wins" or "win_pct". An empty string means wins.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortByWins, nil
	case SortByWins, SortByWinPct:
		return k, nil
	}
	return "", Errorf(ErrValidation, "invalid sort_by parameter: %q", s)
}

// LeaderboardEntry is a ranked projection of a boxer with at least one fight.
type LeaderboardEntry struct {
	Boxer
	WeightClass WeightClass `json:"weight_class"`
	// WinPct is wins/fights as a percentage rounded to one decimal.
	WinPct float64 `json:"win_pct"`
}

// NewLeaderboardEntry derives the weight class and win percentage for b.
func NewLeaderboardEntry(b Boxer) LeaderboardEntry {
	return LeaderboardEntry{
		Boxer:       b,
		WeightClass: b.WeightClass(),
		WinPct:      WinPercentage(b.Wins, b.Fights),
	}
}

// WinPercentage returns wins/fights*100 rounded to one decimal, or 0 when no
// fight has been recorded.
func WinPercentage(wins, fights int) float64 {
	if fights <= 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(fights)*1000) / 10
}
