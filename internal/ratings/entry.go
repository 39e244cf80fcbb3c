package ratings

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source names the origin of a rating.
type Source string

const (
	SourceIMDb           Source = "imdb"
	SourceRottenTomatoes Source = "rotten_tomatoes"
	SourceMetacritic     Source = "metacritic"
	SourcePrimary        Source = "mubi"
	SourceBayesian       Source = "bayesian"
)

// Entry is one rating on the 0-10 scale.
type Entry struct {
	Source       Source  `json:"source"`
	ScoreOverTen float64 `json:"score_over_ten"`
	Voters       int64   `json:"voters"`
}

// NewEntry clamps score into [0, 10] and negative voter counts to zero.
func NewEntry(source Source, score float64, voters int64) Entry {
	return Entry{Source: source, ScoreOverTen: Clamp(score), Voters: max(voters, 0)}
}

// Clamp bounds score to [0, 10]. NaN becomes 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 10:
		return 10
	default:
		return score
	}
}

// ParsePercent converts "80%" to 8.0.
func ParsePercent(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasSuffix(trimmed, "%") {
		return 0, fmt.Errorf("parse percent %q: missing %% suffix", value)
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(trimmed, "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("parse percent %q: %w", value, err)
	}
	return Clamp(pct / 10), nil
}

// ParseOutOf converts "70/100" to 7.0 and "7.5/10" to 7.5.
func ParseOutOf(value string) (float64, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return 0, fmt.Errorf("parse rating %q: missing denominator", value)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", value, err)
	}
	scale, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", value, err)
	}
	if scale <= 0 {
		return 0, fmt.Errorf("parse rating %q: non-positive scale", value)
	}
	return Clamp(score * 10 / scale), nil
}

// Normalize accepts a percentage, an "x/N" fraction, or a bare 0-10 number.
func Normalize(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "", strings.EqualFold(trimmed, "N/A"):
		return 0, fmt.Errorf("parse rating %q: no value", value)
	case strings.HasSuffix(trimmed, "%"):
		return ParsePercent(trimmed)
	case strings.Contains(trimmed, "/"):
		return ParseOutOf(trimmed)
	}
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", value, err)
	}
	return Clamp(score), nil
}

// ParseVotes parses counts such as "2,345,678". Unparseable input yields 0.
func ParseVotes(value string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	votes, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || votes < 0 {
		return 0
	}
	return votes
}

// Find returns the first entry from source.
func Find(entries []Entry, source Source) (Entry, bool) {
	for _, e := range entries {
		if e.Source == source {
			return e, true
		}
	}
	return Entry{}, false
}

// Without returns entries minus every entry from source.
func Without(entries []Entry, source Source) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Source != source {
			out = append(out, e)
		}
	}
	return out
}
