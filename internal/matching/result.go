package matching

import "fmt"

const imdbTitleURL = "https://www.imdb.com/title/%s/"

// buildResult assembles the successful MatchResult for an accepted
// candidate.
func buildResult(primary PrimaryRecord, v Verification, strategy string) MatchResult {
	c := v.Candidate
	result := MatchResult{
		Success:              true,
		ItemID:               primary.ItemID,
		ExternalID:           c.ID,
		MediaType:            c.MediaType,
		IMDbID:               c.IMDbID,
		VoteAverage:          c.VoteAverage,
		VoteCount:            c.VoteCount,
		MatchedTitle:         c.Title,
		MatchedOriginalTitle: c.OriginalTitle,
		MatchedYear:          c.Year(),
		MatchedDirectors:     append([]string(nil), c.Directors...),
		MatchScore:           v.Card.Total,
		StrategyUsed:         strategy,
	}
	if c.IMDbID != "" {
		result.IMDbURL = fmt.Sprintf(imdbTitleURL, c.IMDbID)
	}
	if primary.Year > 0 && result.MatchedYear > 0 {
		delta := abs(result.MatchedYear - primary.Year)
		result.YearDelta = &delta
	}
	return result
}
