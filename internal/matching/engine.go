package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelmatch/internal/logging"
	"reelmatch/internal/retry"
	"reelmatch/internal/services"
	"reelmatch/internal/titles"
	"reelmatch/internal/tmdb"
)

// Engine resolves primary records against the provider.
type Engine struct {
	provider   Provider
	retry      retry.Strategy
	scorer     Scorer
	normalizer titles.Normalizer
	logger     *slog.Logger
	verifier   *Verifier
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetry overrides the retry policy used for searches and detail fetches.
func WithRetry(strategy retry.Strategy) Option {
	return func(e *Engine) {
		e.retry = strategy
	}
}

// WithScorer overrides the confidence scorer.
func WithScorer(scorer Scorer) Option {
	return func(e *Engine) {
		e.scorer = scorer
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an engine over provider. A nil provider is a
// configuration error.
func NewEngine(provider Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, services.Wrap(services.ErrConfiguration, "matching", "new engine", "provider client required", nil)
	}
	e := &Engine{
		provider: provider,
		retry:    retry.New(3, time.Second, 1.5, nil),
		scorer:   DefaultScorer(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.retry.Logger == nil {
		e.retry.Logger = e.logger
	}
	e.verifier = &Verifier{provider: provider, retry: e.retry, scorer: e.scorer, logger: e.logger}
	return e, nil
}

// Match resolves primary. It never panics and never returns an error: every
// failure is reported through MatchResult.ErrorKind.
func (e *Engine) Match(ctx context.Context, primary PrimaryRecord) (result MatchResult) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	ctx = services.WithItemID(ctx, primary.ItemID)
	logger := logging.WithContext(ctx, e.logger)

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "lookup panicked", "match_panic",
				logging.String("panic", fmt.Sprint(r)),
			)
			result = Failure(KindTransport, fmt.Sprintf("lookup panicked: %v", r))
		}
		result.ItemID = primary.ItemID
	}()

	if strings.TrimSpace(primary.Title) == "" && strings.TrimSpace(primary.OriginalTitle) == "" {
		return Failure(KindNoConfidentMatch, "record has no title")
	}

	var lastErr error
	scoredAny := false
	for _, s := range strategies {
		plans := s.plans(primary, e.normalizer)
		if len(plans) == 0 {
			logger.Debug("strategy skipped", logging.String("strategy", s.name))
			continue
		}
		strategyCtx := services.WithStrategy(ctx, s.name)
		hits, err := e.collect(strategyCtx, s.name, plans)
		if err != nil {
			lastErr = err
			if abortsLookup(err) {
				logging.WarnWithContext(logger, "lookup aborted",
					"match_aborted",
					logging.String("strategy", s.name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "provider is rate limiting; lower batch workers or retry later"),
					logging.String(logging.FieldImpact, "item left unmatched"),
				)
				return Failure(KindFromError(err), err.Error())
			}
		}
		if len(hits) == 0 {
			continue
		}

		verification, ok := e.verifier.Verify(strategyCtx, primary, hits, plans[0].opts.MediaType)
		if verification.Scored > 0 {
			scoredAny = true
		}
		if ok && verification.Card.Total >= AcceptanceThreshold {
			attrs := logging.DecisionAttrs("match_strategy", "accepted", fmt.Sprintf("score %d >= %d", verification.Card.Total, AcceptanceThreshold))
			attrs = append(attrs,
				logging.String("strategy", s.name),
				logging.Int64("external_id", verification.Candidate.ID),
				logging.String("matched_title", verification.Candidate.Title),
			)
			logger.Info("match accepted", logging.Args(attrs...)...)
			return buildResult(primary, verification, s.name)
		}
		if ok {
			attrs := logging.DecisionAttrs("match_strategy", "rejected", fmt.Sprintf("best score %d < %d", verification.Card.Total, AcceptanceThreshold))
			attrs = append(attrs,
				logging.String("strategy", s.name),
				logging.Int64("candidate_id", verification.Candidate.ID),
			)
			logger.Debug("strategy below threshold", logging.Args(attrs...)...)
		}
	}

	if !scoredAny && lastErr != nil {
		return Failure(KindFromError(lastErr), lastErr.Error())
	}
	logger.Info("no confident match",
		logging.String("title", primary.Title),
		logging.Int("year", primary.Year),
	)
	return Failure(KindNoConfidentMatch, "no match met confidence threshold")
}

// collect runs every search of a strategy and pools the hits, keeping
// first-seen order and dropping repeated ids.
func (e *Engine) collect(ctx context.Context, name string, plans []searchPlan) ([]tmdb.Result, error) {
	var pooled []tmdb.Result
	var lastErr error
	seen := make(map[int64]struct{})
	for _, plan := range plans {
		var resp *tmdb.Response
		label := fmt.Sprintf("%s %q", name, plan.query)
		err := e.retry.Execute(ctx, label, func(ctx context.Context) error {
			var err error
			resp, err = e.provider.Search(ctx, plan.query, plan.opts)
			return err
		})
		if err != nil {
			lastErr = err
			if abortsLookup(err) {
				return pooled, err
			}
			continue
		}
		if resp == nil {
			continue
		}
		for _, hit := range resp.Results {
			if _, ok := seen[hit.ID]; ok {
				continue
			}
			seen[hit.ID] = struct{}{}
			pooled = append(pooled, hit)
		}
	}
	return pooled, lastErr
}

// abortsLookup reports failures that make further strategies pointless.
func abortsLookup(err error) bool {
	return errors.Is(err, services.ErrRetriesExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
