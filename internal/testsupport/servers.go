package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

// FakeTitle is one record served by FakeTMDB.
type FakeTitle struct {
	ID            int64
	TV            bool
	Title         string
	OriginalTitle string
	Date          string
	Directors     []string
	Runtime       int
	IMDbID        string
	VoteAverage   float64
	VoteCount     int64
}

// FakeTMDB is an in-process matching provider. Searches match titles whose
// title or original title contains the query, ignoring case.
type FakeTMDB struct {
	*httptest.Server
	Searches atomic.Int32
	Details  atomic.Int32
	titles   []FakeTitle
}

// NewTMDBServer starts a fake matching provider and registers cleanup.
func NewTMDBServer(t testing.TB, titles ...FakeTitle) *FakeTMDB {
	t.Helper()

	fake := &FakeTMDB{titles: titles}
	mux := http.NewServeMux()
	mux.HandleFunc("/search/{media}", fake.search)
	mux.HandleFunc("/genre/{media}/list", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"genres": []map[string]any{
			{"id": 18, "name": "Drama"},
			{"id": 80, "name": "Crime"},
		}})
	})
	mux.HandleFunc("/configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"images": map[string]any{}})
	})
	mux.HandleFunc("/{media}/{id}", fake.details)
	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)
	return fake
}

func (f *FakeTMDB) search(w http.ResponseWriter, r *http.Request) {
	f.Searches.Add(1)
	tv := r.PathValue("media") == "tv"
	query := strings.ToLower(r.URL.Query().Get("query"))
	var results []map[string]any
	for _, title := range f.titles {
		if title.TV != tv {
			continue
		}
		if !strings.Contains(strings.ToLower(title.Title), query) &&
			!strings.Contains(strings.ToLower(title.OriginalTitle), query) {
			continue
		}
		results = append(results, f.payload(title))
	}
	writeJSON(w, map[string]any{"page": 1, "results": results, "total_results": len(results)})
}

func (f *FakeTMDB) details(w http.ResponseWriter, r *http.Request) {
	f.Details.Add(1)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	tv := r.PathValue("media") == "tv"
	for _, title := range f.titles {
		if title.ID != id || title.TV != tv {
			continue
		}
		payload := f.payload(title)
		crew := make([]map[string]string, 0, len(title.Directors))
		for _, name := range title.Directors {
			crew = append(crew, map[string]string{"name": name, "job": "Director"})
		}
		payload["credits"] = map[string]any{"crew": crew}
		payload["external_ids"] = map[string]any{"imdb_id": title.IMDbID}
		if tv {
			payload["episode_run_time"] = []int{title.Runtime}
		} else {
			payload["runtime"] = title.Runtime
		}
		writeJSON(w, payload)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	writeJSON(w, map[string]any{"status_message": "The resource you requested could not be found."})
}

func (f *FakeTMDB) payload(title FakeTitle) map[string]any {
	out := map[string]any{
		"id":           title.ID,
		"vote_average": title.VoteAverage,
		"vote_count":   title.VoteCount,
	}
	if title.TV {
		out["name"] = title.Title
		out["original_name"] = title.OriginalTitle
		out["first_air_date"] = title.Date
	} else {
		out["title"] = title.Title
		out["original_title"] = title.OriginalTitle
		out["release_date"] = title.Date
	}
	return out
}

// FakeRatings is the ratings payload served for one IMDb id.
type FakeRatings struct {
	IMDbRating     string
	IMDbVotes      string
	RottenTomatoes string
	Metacritic     string
}

// NewOMDbServer starts a fake ratings provider. Unknown ids answer with the
// provider's "not found" error body.
func NewOMDbServer(t testing.TB, byID map[string]FakeRatings) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry, ok := byID[r.URL.Query().Get("i")]
		if !ok {
			writeJSON(w, map[string]any{"Response": "False", "Error": "Incorrect IMDb ID."})
			return
		}
		var sources []map[string]string
		if entry.RottenTomatoes != "" {
			sources = append(sources, map[string]string{"Source": "Rotten Tomatoes", "Value": entry.RottenTomatoes})
		}
		if entry.Metacritic != "" {
			sources = append(sources, map[string]string{"Source": "Metacritic", "Value": entry.Metacritic})
		}
		writeJSON(w, map[string]any{
			"Response":   "True",
			"imdbRating": entry.IMDbRating,
			"imdbVotes":  entry.IMDbVotes,
			"Ratings":    sources,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode: %v", err), http.StatusInternalServerError)
	}
}
