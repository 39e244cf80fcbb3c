package matching

import (
	"strings"

	"reelmatch/internal/textutil"
)

// Signal weights.
const (
	directorMatchPoints    = 50
	directorMismatchPoints = -20
	titleMatchPoints       = 30
	exactYearPoints        = 10
	nearYearPoints         = 5
	runtimeMatchPoints     = 10
	runtimeOutlierPoints   = -30
	runtimeReducedPoints   = -10
	degradedYearPoints     = 10

	directorSimilarityMin = 85
	titleSimilarityMin    = 90
	strongTitleSimilarity = 90
	runtimeMatchWindow    = 10
	runtimeOutlierWindow  = 40
)

var nameStopwords = map[string]struct{}{
	"brothers": {},
	"brother":  {},
	"bros":     {},
	"the":      {},
	"and":      {},
	"&":        {},
}

// Similarity is the fuzzy comparison backend the scorer depends on.
type Similarity interface {
	// TokenSetRatio compares two titles on a 0-100 scale.
	TokenSetRatio(a, b string) int
	// WRatio compares two person names on a 0-100 scale.
	WRatio(a, b string) int
}

type fuzzySimilarity struct{}

func (fuzzySimilarity) TokenSetRatio(a, b string) int { return textutil.TokenSetRatio(a, b) }
func (fuzzySimilarity) WRatio(a, b string) int        { return textutil.WRatio(a, b) }

// Scorecard is the breakdown behind a confidence score.
type Scorecard struct {
	Total           int
	DirectorMatched bool
	DirectorPoints  int
	TitleSimilarity int
	TitlePoints     int
	YearPoints      int
	RuntimePoints   int
	Degraded        bool
}

// Scorer computes confidence scores. A Scorer without a Similarity backend
// degrades to the year-only rule, which never reaches AcceptanceThreshold.
type Scorer struct {
	similarity Similarity
}

// NewScorer returns a scorer backed by sim. A nil sim yields the degraded
// scorer.
func NewScorer(sim Similarity) Scorer {
	return Scorer{similarity: sim}
}

// DefaultScorer uses the textutil fuzzy matchers.
func DefaultScorer() Scorer {
	return NewScorer(fuzzySimilarity{})
}

// Score rates candidate against primary with the default scorer.
func Score(primary PrimaryRecord, candidate Candidate) Scorecard {
	return DefaultScorer().Score(primary, candidate)
}

// Score rates candidate against primary.
func (s Scorer) Score(primary PrimaryRecord, candidate Candidate) Scorecard {
	if s.similarity == nil {
		card := Scorecard{Degraded: true}
		if primary.Year > 0 && primary.Year == candidate.Year() {
			card.YearPoints = degradedYearPoints
		}
		card.Total = card.YearPoints
		return card
	}

	var card Scorecard
	card.TitleSimilarity = s.titleSimilarity(primary, candidate)
	if card.TitleSimilarity >= titleSimilarityMin {
		card.TitlePoints = titleMatchPoints
	}

	if len(primary.Directors) > 0 && len(candidate.Directors) > 0 {
		card.DirectorMatched = s.directorsMatch(primary.Directors, candidate.Directors, card.TitleSimilarity > strongTitleSimilarity)
		if card.DirectorMatched {
			card.DirectorPoints = directorMatchPoints
		} else {
			card.DirectorPoints = directorMismatchPoints
		}
	}

	if primary.Year > 0 {
		if year := candidate.Year(); year > 0 {
			switch abs(year - primary.Year) {
			case 0:
				card.YearPoints = exactYearPoints
			case 1:
				card.YearPoints = nearYearPoints
			}
		}
	}

	if primary.RuntimeMinutes > 0 && candidate.RuntimeMinutes > 0 {
		delta := abs(primary.RuntimeMinutes - candidate.RuntimeMinutes)
		switch {
		case delta <= runtimeMatchWindow:
			card.RuntimePoints = runtimeMatchPoints
		case delta > runtimeOutlierWindow:
			card.RuntimePoints = runtimeOutlierPoints
			if card.DirectorMatched && card.TitleSimilarity > strongTitleSimilarity {
				card.RuntimePoints = runtimeReducedPoints
			}
		}
	}

	card.Total = card.DirectorPoints + card.TitlePoints + card.YearPoints + card.RuntimePoints
	return card
}

func (s Scorer) titleSimilarity(primary PrimaryRecord, candidate Candidate) int {
	left := nonEmpty(primary.Title, primary.OriginalTitle)
	right := nonEmpty(append([]string{candidate.Title, candidate.OriginalTitle}, candidate.AlternativeTitles...)...)
	best := 0
	for _, a := range left {
		foldedA := textutil.FoldDiacritics(a)
		for _, b := range right {
			best = max(best, s.similarity.TokenSetRatio(a, b))
			best = max(best, s.similarity.TokenSetRatio(foldedA, textutil.FoldDiacritics(b)))
			if best == 100 {
				return best
			}
		}
	}
	return best
}

func (s Scorer) directorsMatch(primary, candidate []string, strongTitle bool) bool {
	for _, p := range primary {
		pn := textutil.NormalizeName(p)
		if pn == "" {
			continue
		}
		reversed := reverseTokens(pn)
		for _, c := range candidate {
			cn := textutil.NormalizeName(c)
			if cn == "" {
				continue
			}
			if s.similarity.WRatio(pn, cn) >= directorSimilarityMin {
				return true
			}
			if reversed != pn && s.similarity.WRatio(reversed, cn) >= directorSimilarityMin {
				return true
			}
			if tokenOverlapMatch(pn, cn) {
				return true
			}
			if strongTitle && surnameMatch(pn, cn) {
				return true
			}
		}
	}
	return false
}

// tokenOverlapMatch accepts names sharing at least half of the smaller
// name's tokens, with at least one shared token longer than three runes.
func tokenOverlapMatch(a, b string) bool {
	ta, tb := nameTokens(a), nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	shared := 0
	long := false
	for token := range ta {
		if _, ok := tb[token]; ok {
			shared++
			if len([]rune(token)) > 3 {
				long = true
			}
		}
	}
	smaller := min(len(ta), len(tb))
	return long && shared*2 >= smaller
}

func surnameMatch(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	if len(fa) == 0 || len(fb) == 0 {
		return false
	}
	last := fa[len(fa)-1]
	return last == fb[len(fb)-1] && len([]rune(last)) > 2
}

func nameTokens(name string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range strings.Fields(name) {
		if _, stop := nameStopwords[token]; stop {
			continue
		}
		out[token] = struct{}{}
	}
	return out
}

func reverseTokens(name string) string {
	fields := strings.Fields(name)
	for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
		fields[i], fields[j] = fields[j], fields[i]
	}
	return strings.Join(fields, " ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
