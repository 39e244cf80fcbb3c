package ratings

import "math"

// DefaultGlobalMean is the prior C used before a catalogue has been calibrated.
const DefaultGlobalMean = 6.9

// Constants are the Bayesian prior: C is the global mean rating and M the
// confidence threshold in votes.
type Constants struct {
	GlobalMean float64 `json:"global_mean_C"`
	MinVotes   float64 `json:"mubi_confidence_m"`
}

// WeightedMean returns the vote-weighted mean R and total votes v over the
// entries that carry voters. Bayesian entries are ignored.
func WeightedMean(entries []Entry) (float64, int64) {
	var weighted float64
	var votes int64
	for _, e := range entries {
		if e.Voters <= 0 || e.Source == SourceBayesian {
			continue
		}
		weighted += e.ScoreOverTen * float64(e.Voters)
		votes += e.Voters
	}
	if votes == 0 {
		return 0, 0
	}
	return weighted / float64(votes), votes
}

// Bayesian computes W = v/(v+m)*R + m/(v+m)*C, rounded to one decimal. It
// reports false when no entry carries votes.
func Bayesian(entries []Entry, c Constants) (Entry, bool) {
	mean, votes := WeightedMean(entries)
	if votes == 0 {
		return Entry{}, false
	}
	v := float64(votes)
	m := math.Max(c.MinVotes, 0)
	w := v/(v+m)*mean + m/(v+m)*c.GlobalMean
	return NewEntry(SourceBayesian, round1(w), votes), true
}

// Apply replaces any existing bayesian entry with a freshly computed one, or
// drops it when the entries carry no votes.
func Apply(entries []Entry, c Constants) []Entry {
	out := Without(entries, SourceBayesian)
	if composite, ok := Bayesian(out, c); ok {
		out = append(out, composite)
	}
	return out
}

// Calibrate derives constants from a catalogue: C is the mean of every
// item's weighted mean (falling back to fallbackMean), and M is the mean
// primary-catalogue voter count.
func Calibrate(items [][]Entry, fallbackMean float64) Constants {
	var sumMean, sumPrimary float64
	var nMean, nPrimary int
	for _, entries := range items {
		if mean, _ := WeightedMean(entries); mean > 0 {
			sumMean += mean
			nMean++
		}
		if primary, ok := Find(entries, SourcePrimary); ok {
			sumPrimary += float64(primary.Voters)
			nPrimary++
		}
	}
	out := Constants{GlobalMean: fallbackMean}
	if nMean > 0 {
		out.GlobalMean = sumMean / float64(nMean)
	}
	if nPrimary > 0 {
		out.MinVotes = sumPrimary / float64(nPrimary)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
