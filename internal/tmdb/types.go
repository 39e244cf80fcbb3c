package tmdb

import "strings"

// MediaType selects the movie or TV collection.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType maps free-form input onto a MediaType, defaulting to movie.
func ParseMediaType(value string) MediaType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tv", "series", "show", "tv_show", "miniseries":
		return MediaTV
	default:
		return MediaMovie
	}
}

// Result represents a single search hit.
type Result struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or the TV name.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// DisplayOriginalTitle returns the original movie title or original TV name.
func (r Result) DisplayOriginalTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

// Date returns the release date or first air date.
func (r Result) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Response models the paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// CrewMember is a single credits.crew entry.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Creator is a TV created_by entry.
type Creator struct {
	Name string `json:"name"`
}

// ExternalIDs holds cross-reference identifiers.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
}

type altTitle struct {
	Title string `json:"title"`
}

// AlternativeTitles covers both payload shapes: movies use "titles", TV uses
// "results".
type AlternativeTitles struct {
	Titles  []altTitle `json:"titles"`
	Results []altTitle `json:"results"`
}

// Details is the expanded payload used for verification and scoring.
type Details struct {
	Result
	MediaType      MediaType `json:"-"`
	IMDbID         string    `json:"imdb_id"`
	Runtime        int       `json:"runtime"`
	EpisodeRunTime []int     `json:"episode_run_time"`
	CreatedBy      []Creator `json:"created_by"`
	Credits        struct {
		Crew []CrewMember `json:"crew"`
	} `json:"credits"`
	ExternalIDs       ExternalIDs       `json:"external_ids"`
	AlternativeTitles AlternativeTitles `json:"alternative_titles"`
}

// Directors lists crew members credited as Director, falling back to the TV
// creators when no director is credited.
func (d *Details) Directors() []string {
	var out []string
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" && strings.TrimSpace(member.Name) != "" {
			out = append(out, member.Name)
		}
	}
	if len(out) == 0 && d.MediaType == MediaTV {
		for _, creator := range d.CreatedBy {
			if strings.TrimSpace(creator.Name) != "" {
				out = append(out, creator.Name)
			}
		}
	}
	return out
}

// RuntimeMinutes returns the movie runtime or the first episode runtime.
func (d *Details) RuntimeMinutes() int {
	if d.Runtime > 0 {
		return d.Runtime
	}
	for _, rt := range d.EpisodeRunTime {
		if rt > 0 {
			return rt
		}
	}
	return 0
}

// IMDb returns the IMDb id from external_ids or the top-level field.
func (d *Details) IMDb() string {
	if id := strings.TrimSpace(d.ExternalIDs.IMDbID); id != "" {
		return id
	}
	return strings.TrimSpace(d.IMDbID)
}

// AltTitles flattens both alternative title shapes.
func (d *Details) AltTitles() []string {
	out := make([]string, 0, len(d.AlternativeTitles.Titles)+len(d.AlternativeTitles.Results))
	for _, group := range [][]altTitle{d.AlternativeTitles.Titles, d.AlternativeTitles.Results} {
		for _, alt := range group {
			if title := strings.TrimSpace(alt.Title); title != "" {
				out = append(out, title)
			}
		}
	}
	return out
}

// Genre is one entry from a genre list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
