package matching

import (
	"strings"

	"reelmatch/internal/ratings"
	"reelmatch/internal/titles"
	"reelmatch/internal/tmdb"
)

// AcceptanceThreshold is the minimum score for a candidate to be accepted.
const AcceptanceThreshold = 80

// PrimaryRecord is the caller's catalogue entry to resolve.
type PrimaryRecord struct {
	ItemID         string
	Title          string
	OriginalTitle  string
	Year           int
	Directors      []string
	RuntimeMinutes int
	Genres         []string
	MediaType      tmdb.MediaType
	// ExternalIDHint is informational only and never used for acceptance.
	ExternalIDHint string
}

func (p PrimaryRecord) mediaType() tmdb.MediaType {
	if p.MediaType == "" {
		return tmdb.MediaMovie
	}
	return p.MediaType
}

// Candidate is a provider hit, enriched once its details are fetched.
type Candidate struct {
	ID                int64
	MediaType         tmdb.MediaType
	Title             string
	OriginalTitle     string
	Date              string
	VoteAverage       float64
	VoteCount         int64
	RuntimeMinutes    int
	Directors         []string
	IMDbID            string
	AlternativeTitles []string
}

// Year returns the release year parsed from Date, or 0.
func (c Candidate) Year() int {
	return titles.YearFromDate(c.Date)
}

func candidateFromResult(r tmdb.Result, mediaType tmdb.MediaType) Candidate {
	return Candidate{
		ID:            r.ID,
		MediaType:     mediaType,
		Title:         r.DisplayTitle(),
		OriginalTitle: r.DisplayOriginalTitle(),
		Date:          r.Date(),
		VoteAverage:   r.VoteAverage,
		VoteCount:     r.VoteCount,
	}
}

func (c *Candidate) applyDetails(d *tmdb.Details) {
	if d == nil {
		return
	}
	if title := d.DisplayTitle(); title != "" {
		c.Title = title
	}
	if original := d.DisplayOriginalTitle(); original != "" {
		c.OriginalTitle = original
	}
	if date := d.Date(); date != "" {
		c.Date = date
	}
	if d.VoteCount > 0 {
		c.VoteAverage = d.VoteAverage
		c.VoteCount = d.VoteCount
	}
	c.RuntimeMinutes = d.RuntimeMinutes()
	c.Directors = d.Directors()
	c.IMDbID = d.IMDb()
	c.AlternativeTitles = d.AltTitles()
}

// MatchResult is the outcome of one lookup. Success implies
// MatchScore >= AcceptanceThreshold.
type MatchResult struct {
	Success bool   `json:"success"`
	ItemID  string `json:"item_id,omitempty"`

	ExternalID           int64          `json:"external_id,omitempty"`
	MediaType            tmdb.MediaType `json:"media_type,omitempty"`
	IMDbID               string         `json:"imdb_id,omitempty"`
	IMDbURL              string         `json:"imdb_url,omitempty"`
	VoteAverage          float64        `json:"vote_average,omitempty"`
	VoteCount            int64          `json:"vote_count,omitempty"`
	MatchedTitle         string         `json:"matched_title,omitempty"`
	MatchedOriginalTitle string         `json:"matched_original_title,omitempty"`
	MatchedYear          int            `json:"matched_year,omitempty"`
	MatchedDirectors     []string       `json:"matched_directors,omitempty"`
	MatchScore           int            `json:"match_score"`
	StrategyUsed         string         `json:"strategy_used,omitempty"`
	// YearDelta is |MatchedYear - primary year| when both are known.
	YearDelta *int `json:"year_delta,omitempty"`

	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Detail    string    `json:"detail,omitempty"`

	Ratings []ratings.Entry `json:"ratings,omitempty"`
}

func sameTitle(a, b string) bool {
	a = strings.Join(strings.Fields(strings.ToLower(a)), " ")
	b = strings.Join(strings.Fields(strings.ToLower(b)), " ")
	return a != "" && a == b
}
