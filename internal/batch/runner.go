package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reelmatch/internal/logging"
	"reelmatch/internal/matching"
	"reelmatch/internal/ratings"
	"reelmatch/internal/services"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 10

// Matcher resolves one record.
type Matcher interface {
	Match(ctx context.Context, primary matching.PrimaryRecord) matching.MatchResult
}

// RatingsFetcher loads secondary ratings for an accepted match.
type RatingsFetcher interface {
	Ratings(ctx context.Context, imdbID string) ([]ratings.Entry, error)
}

// Outcome is the per-item result of a run.
type Outcome struct {
	Index    int
	Record   matching.PrimaryRecord
	Result   matching.MatchResult
	Duration time.Duration
	// RatingsError is set when the ratings fetch failed. The match stands.
	RatingsError string
}

// Progress is reported every ProgressEvery completed items and once at
// the end of a run.
type Progress struct {
	RunID     string
	Done      int
	Total     int
	Succeeded int
	Failed    int
}

// Summary aggregates a finished run. Outcomes[i] belongs to records[i].
type Summary struct {
	RunID     string
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// FailuresByKind counts failed outcomes per error kind.
func (s Summary) FailuresByKind() map[matching.ErrorKind]int {
	counts := make(map[matching.ErrorKind]int)
	for _, o := range s.Outcomes {
		if !o.Result.Success {
			counts[o.Result.ErrorKind]++
		}
	}
	return counts
}

// Runner drives a worker pool over a batch of records.
type Runner struct {
	matcher       Matcher
	ratings       RatingsFetcher
	workers       int
	progressEvery int
	onProgress    func(Progress)
	onOutcome     func(Outcome)
	logger        *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRatings enables ratings enrichment for accepted matches.
func WithRatings(fetcher RatingsFetcher) Option {
	return func(r *Runner) { r.ratings = fetcher }
}

// WithProgress registers a progress callback invoked every n completions.
func WithProgress(n int, fn func(Progress)) Option {
	return func(r *Runner) {
		if n > 0 {
			r.progressEvery = n
		}
		r.onProgress = fn
	}
}

// WithOutcome registers a callback invoked as each item finishes. Calls are
// serialized.
func WithOutcome(fn func(Outcome)) Option {
	return func(r *Runner) { r.onOutcome = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a Runner.
func New(matcher Matcher, opts ...Option) (*Runner, error) {
	if matcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "new", "matcher is required", nil)
	}
	r := &Runner{
		matcher:       matcher,
		workers:       DefaultWorkers,
		progressEvery: 10,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r, nil
}

// Run resolves every record and returns once all of them finished. The
// context is handed to each lookup; items are never cancelled because a
// sibling failed.
func (r *Runner) Run(ctx context.Context, records []matching.PrimaryRecord) Summary {
	runID := uuid.NewString()
	if existing, ok := services.RunIDFromContext(ctx); ok {
		runID = existing
	} else {
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	summary := Summary{RunID: runID, Outcomes: make([]Outcome, len(records))}
	logger.Info("batch started",
		logging.Int("items", len(records)),
		logging.Int("workers", r.workers),
	)

	var (
		mu   sync.Mutex
		done int
	)
	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		summary.Outcomes[o.Index] = o
		done++
		if o.Result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if r.onOutcome != nil {
			r.onOutcome(o)
		}
		if done%r.progressEvery == 0 && done < len(records) {
			r.report(logger, runID, done, len(records), summary)
		}
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, rec := range records {
		g.Go(func() error {
			record(r.runOne(ctx, i, rec))
			return nil
		})
	}
	_ = g.Wait()

	summary.Elapsed = time.Since(start)
	r.report(logger, runID, done, len(records), summary)
	logger.Info("batch finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary
}

func (r *Runner) report(logger *slog.Logger, runID string, done, total int, s Summary) {
	p := Progress{RunID: runID, Done: done, Total: total, Succeeded: s.Succeeded, Failed: s.Failed}
	logger.Info("batch progress",
		logging.Int("done", p.Done),
		logging.Int("total", p.Total),
		logging.Int("succeeded", p.Succeeded),
		logging.Int("failed", p.Failed),
	)
	if r.onProgress != nil {
		r.onProgress(p)
	}
}

func (r *Runner) runOne(ctx context.Context, index int, rec matching.PrimaryRecord) (out Outcome) {
	start := time.Now()
	out = Outcome{Index: index, Record: rec}
	defer func() {
		if p := recover(); p != nil {
			logging.ErrorWithContext(r.logger, "batch worker panicked", "batch_worker_panic",
				logging.Int("index", index),
				logging.String("item_id", rec.ItemID),
				logging.String("panic", fmt.Sprint(p)),
			)
			out.Result = matching.Failure(matching.KindTransport, fmt.Sprintf("worker panicked: %v", p))
			out.Result.ItemID = rec.ItemID
		}
		out.Duration = time.Since(start)
	}()

	itemCtx := services.WithItemID(ctx, rec.ItemID)
	out.Result = r.matcher.Match(itemCtx, rec)
	if !out.Result.Success || r.ratings == nil || out.Result.IMDbID == "" {
		return out
	}

	entries, err := r.fetchRatings(itemCtx, out.Result.IMDbID)
	if err != nil {
		out.RatingsError = err.Error()
		logging.WarnWithContext(logging.WithContext(itemCtx, r.logger), "ratings fetch failed", "ratings_failed",
			logging.String("imdb_id", out.Result.IMDbID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check omdb api keys and daily limits"),
			logging.String(logging.FieldImpact, "match kept without secondary ratings"),
		)
		return out
	}
	out.Result.Ratings = entries
	return out
}

// fetchRatings turns a panic in the fetcher into an error so the accepted
// match survives it.
func (r *Runner) fetchRatings(ctx context.Context, imdbID string) (entries []ratings.Entry, err error) {
	defer func() {
		if p := recover(); p != nil {
			entries, err = nil, fmt.Errorf("ratings panicked: %v", p)
		}
	}()
	return r.ratings.Ratings(ctx, imdbID)
}
