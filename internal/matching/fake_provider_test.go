package matching

import (
	"context"
	"errors"
	"sync"

	"reelmatch/internal/tmdb"
)

type searchCall struct {
	query string
	opts  tmdb.SearchOptions
}

type fakeProvider struct {
	mu         sync.Mutex
	search     func(query string, opts tmdb.SearchOptions) (*tmdb.Response, error)
	details    map[int64]*tmdb.Details
	detailErrs map[int64]error
	searches   []searchCall
	detailHits []int64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		details:    make(map[int64]*tmdb.Details),
		detailErrs: make(map[int64]error),
	}
}

func (f *fakeProvider) Search(_ context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error) {
	f.mu.Lock()
	f.searches = append(f.searches, searchCall{query: query, opts: opts})
	fn := f.search
	f.mu.Unlock()
	if fn == nil {
		return &tmdb.Response{}, nil
	}
	return fn(query, opts)
}

func (f *fakeProvider) Details(_ context.Context, id int64, mediaType tmdb.MediaType) (*tmdb.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailHits = append(f.detailHits, id)
	if err := f.detailErrs[id]; err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	copied := *d
	copied.MediaType = mediaType
	return &copied, nil
}

// add registers a record that every search returns, plus its details.
func (f *fakeProvider) add(d *tmdb.Details) {
	f.details[d.ID] = d
}

func hitFor(d *tmdb.Details) tmdb.Result {
	return d.Result
}

func respond(hits ...tmdb.Result) *tmdb.Response {
	return &tmdb.Response{Page: 1, Results: hits, TotalResults: len(hits)}
}

func movie(id int64, title, original, date string, runtime int, directors ...string) *tmdb.Details {
	d := &tmdb.Details{
		Result: tmdb.Result{
			ID:            id,
			Title:         title,
			OriginalTitle: original,
			ReleaseDate:   date,
			VoteAverage:   7.1,
			VoteCount:     120,
		},
		Runtime: runtime,
	}
	for _, name := range directors {
		d.Credits.Crew = append(d.Credits.Crew, tmdb.CrewMember{Name: name, Job: "Director"})
	}
	d.ExternalIDs.IMDbID = "tt" + title
	return d
}
