package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reelmatch/internal/retry"
	"reelmatch/internal/services"
	"reelmatch/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := tmdb.New("", "https://example.com", "en-US")
	if err == nil {
		t.Fatal("expected error when api key missing")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchMovieSendsYearAndAdultFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" || q.Get("query") != "Omen" || q.Get("year") != "2023" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if q.Get("include_adult") != "false" || q.Get("language") != "en-US" {
			t.Errorf("unexpected flags %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":7,"title":"Omen","original_title":"Augure","release_date":"2023-05-20"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US", tmdb.WithIncludeAdult(false))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.Search(context.Background(), "Omen", tmdb.SearchOptions{Year: 2023})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %#v", resp)
	}
	hit := resp.Results[0]
	if hit.DisplayTitle() != "Omen" || hit.DisplayOriginalTitle() != "Augure" || hit.Date() != "2023-05-20" {
		t.Fatalf("unexpected hit: %#v", hit)
	}
}

func TestSearchTVUsesFirstAirDateYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("first_air_date_year") != "1990" {
			t.Errorf("expected first_air_date_year, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1920,"name":"Twin Peaks","first_air_date":"1990-04-08"}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	resp, err := client.Search(context.Background(), "Twin Peaks", tmdb.SearchOptions{Year: 1990, MediaType: tmdb.MediaTV})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.Results[0].DisplayTitle() != "Twin Peaks" || resp.Results[0].Date() != "1990-04-08" {
		t.Fatalf("unexpected hit: %#v", resp.Results[0])
	}
}

func TestSearchHTTPErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	_, err := client.Search(context.Background(), "fail", tmdb.SearchOptions{})
	var statusErr *retry.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests || statusErr.RetryAfter != 2*time.Second {
		t.Fatalf("unexpected status error: %#v", statusErr)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, _ := tmdb.New("key", "https://example.com", "")
	if _, err := client.Search(context.Background(), "  ", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestDetailsExpandsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/7" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits,external_ids,alternative_titles" {
			t.Errorf("unexpected append_to_response %q", got)
		}
		_, _ = w.Write([]byte(`{
			"id": 7, "title": "Omen", "original_title": "Augure", "release_date": "2023-05-20",
			"runtime": 90, "vote_average": 6.4, "vote_count": 55,
			"credits": {"crew": [{"name": "Baloji Tshiani", "job": "Director"}, {"name": "Someone", "job": "Editor"}]},
			"external_ids": {"imdb_id": "tt1234567"},
			"alternative_titles": {"titles": [{"title": "Omen (Augure)"}]}
		}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	details, err := client.Details(context.Background(), 7, tmdb.MediaMovie)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if got := details.Directors(); len(got) != 1 || got[0] != "Baloji Tshiani" {
		t.Fatalf("unexpected directors %v", got)
	}
	if details.IMDb() != "tt1234567" || details.RuntimeMinutes() != 90 {
		t.Fatalf("unexpected details %#v", details)
	}
	if alts := details.AltTitles(); len(alts) != 1 || alts[0] != "Omen (Augure)" {
		t.Fatalf("unexpected alternative titles %v", alts)
	}
}

func TestDetailsTVFallsBackToCreators(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 1920, "name": "Twin Peaks", "episode_run_time": [47],
			"created_by": [{"name": "David Lynch"}, {"name": "Mark Frost"}],
			"alternative_titles": {"results": [{"title": "I segreti di Twin Peaks"}]}
		}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	details, err := client.Details(context.Background(), 1920, tmdb.MediaTV)
	if err != nil {
		t.Fatalf("Details returned error: %v", err)
	}
	if got := details.Directors(); len(got) != 2 || got[0] != "David Lynch" {
		t.Fatalf("unexpected directors %v", got)
	}
	if details.RuntimeMinutes() != 47 || len(details.AltTitles()) != 1 {
		t.Fatalf("unexpected details %#v", details)
	}
}

func TestPingAndGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/configuration":
			_, _ = w.Write([]byte(`{"images":{}}`))
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":18,"name":"Drama"},{"id":35,"name":"Comedy"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	genres, err := client.Genres(context.Background(), tmdb.MediaMovie)
	if err != nil {
		t.Fatalf("Genres returned error: %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Drama" {
		t.Fatalf("unexpected genres %v", genres)
	}
	if _, err := client.Genres(context.Background(), tmdb.MediaTV); retry.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestMinIntervalSpacesRequests(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "", tmdb.WithMinInterval(30*time.Millisecond))
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Search(context.Background(), "x", tmdb.SearchOptions{}); err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected requests to be spaced, elapsed %v", elapsed)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", hits.Load())
	}
}

func TestParseMediaType(t *testing.T) {
	if tmdb.ParseMediaType("TV") != tmdb.MediaTV || tmdb.ParseMediaType("film") != tmdb.MediaMovie {
		t.Fatal("unexpected media type mapping")
	}
}
