package matching

import (
	"context"
	"fmt"
	"log/slog"

	"reelmatch/internal/logging"
	"reelmatch/internal/retry"
	"reelmatch/internal/tmdb"
)

// maxYearDelta is the temporal pre-filter window in years.
const maxYearDelta = 3

// Provider is the subset of the provider client the engine uses.
type Provider interface {
	Search(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error)
	Details(ctx context.Context, id int64, mediaType tmdb.MediaType) (*tmdb.Details, error)
}

// Verifier filters search hits, fetches their details and keeps the best
// scoring candidate.
type Verifier struct {
	provider Provider
	retry    retry.Strategy
	scorer   Scorer
	logger   *slog.Logger
}

// Verification is the best candidate a Verifier found.
type Verification struct {
	Candidate Candidate
	Card      Scorecard
	// Scored counts the candidates whose details were fetched and scored.
	Scored int
}

// Verify returns the highest scoring candidate among hits. Ties keep the
// earlier hit. Candidates whose details cannot be fetched are skipped. The
// second return value is false when nothing could be scored.
func (v *Verifier) Verify(ctx context.Context, primary PrimaryRecord, hits []tmdb.Result, mediaType tmdb.MediaType) (Verification, bool) {
	logger := logging.WithContext(ctx, v.logger)
	var best Verification
	found := false
	scored := 0
	for _, hit := range hits {
		candidate := candidateFromResult(hit, mediaType)
		if !withinYearWindow(primary, candidate) {
			logger.Debug("candidate outside year window",
				logging.Int64("candidate_id", candidate.ID),
				logging.String("candidate_title", candidate.Title),
				logging.Int("candidate_year", candidate.Year()),
				logging.Int("primary_year", primary.Year),
			)
			continue
		}

		var details *tmdb.Details
		label := fmt.Sprintf("details %s/%d", mediaType, candidate.ID)
		err := v.retry.Execute(ctx, label, func(ctx context.Context) error {
			var err error
			details, err = v.provider.Details(ctx, candidate.ID, mediaType)
			return err
		})
		if err != nil {
			logging.WarnWithContext(logger, "candidate detail fetch failed",
				"candidate_details_failed",
				logging.Int64("candidate_id", candidate.ID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "provider may be throttling detail requests"),
				logging.String(logging.FieldImpact, "candidate excluded from scoring"),
			)
			continue
		}
		candidate.applyDetails(details)

		card := v.scorer.Score(primary, candidate)
		scored++
		logger.Debug("candidate scored",
			logging.Int64("candidate_id", candidate.ID),
			logging.String("candidate_title", candidate.Title),
			logging.Int("score", card.Total),
			logging.Int("title_similarity", card.TitleSimilarity),
			logging.Bool("director_matched", card.DirectorMatched),
			logging.Int("year_points", card.YearPoints),
			logging.Int("runtime_points", card.RuntimePoints),
		)
		if !found || card.Total > best.Card.Total {
			best = Verification{Candidate: candidate, Card: card}
			found = true
		}
	}
	best.Scored = scored
	return best, found
}

// withinYearWindow applies the temporal pre-filter. Exact-title candidates
// bypass it.
func withinYearWindow(primary PrimaryRecord, candidate Candidate) bool {
	year := candidate.Year()
	if primary.Year <= 0 || year <= 0 {
		return true
	}
	if abs(year-primary.Year) <= maxYearDelta {
		return true
	}
	return sameTitle(candidate.Title, primary.Title) || sameTitle(candidate.OriginalTitle, primary.Title)
}
