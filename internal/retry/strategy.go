package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"reelmatch/internal/logging"
	"reelmatch/internal/services"
)

// retryAfterBuffer is added on top of a server-supplied Retry-After hint.
const retryAfterBuffer = time.Second

// Sleeper pauses between attempts. It returns early with the context error
// when ctx is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// Strategy is a retry policy. The zero value makes a single attempt.
type Strategy struct {
	// MaxRetries bounds the number of backoff sleeps; a call is attempted at
	// most MaxRetries+1 times.
	MaxRetries     int
	InitialBackoff time.Duration
	Multiplier     float64
	Sleep          Sleeper
	Logger         *slog.Logger
}

// New returns a Strategy with the supplied budget and real sleeps.
func New(maxRetries int, initialBackoff time.Duration, multiplier float64, logger *slog.Logger) Strategy {
	return Strategy{
		MaxRetries:     maxRetries,
		InitialBackoff: initialBackoff,
		Multiplier:     multiplier,
		Logger:         logger,
	}
}

// Execute invokes call until it completes, fails terminally, or the retry
// budget is spent. The returned error carries a services marker:
// ErrNotFound for 404, ErrRetriesExhausted once the budget is spent, and
// ErrProvider for every other failure.
func (s Strategy) Execute(ctx context.Context, label string, call func(context.Context) error) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	multiplier := s.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	maxRetries := max(s.MaxRetries, 0)

	backoff := s.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		logger.Debug("provider call attempt",
			logging.String("label", label),
			logging.Int("attempt", attempt+1),
			logging.Int("max_attempts", maxRetries+1),
		)
		err := call(ctx)
		if err == nil {
			return nil
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return services.Wrap(services.ErrProvider, "retry", label, "transport failure", err)
		}
		if statusErr.StatusCode == http.StatusNotFound {
			return services.Wrap(services.ErrNotFound, "retry", label, "title not found (404)", err)
		}
		if !Retryable(statusErr.StatusCode) {
			return services.Wrap(services.ErrProvider, "retry", label, "unexpected status", err)
		}

		lastErr = err
		if attempt == maxRetries {
			break
		}
		wait := backoff
		if statusErr.RetryAfter > 0 {
			wait = max(backoff, statusErr.RetryAfter+retryAfterBuffer)
		}
		logging.WarnWithContext(logger, "provider call failed; backing off",
			"provider_retry",
			logging.String("label", label),
			logging.Int("status", statusErr.StatusCode),
			logging.Duration("wait", wait),
			logging.String(logging.FieldErrorHint, "provider is rate limiting or unavailable"),
			logging.String(logging.FieldImpact, "lookup delayed"),
		)
		if err := sleep(ctx, wait); err != nil {
			return services.Wrap(services.ErrTimeout, "retry", label, "cancelled during backoff", err)
		}
		backoff = time.Duration(float64(backoff) * multiplier)
	}

	return services.Wrap(services.ErrRetriesExhausted, "retry", label, fmt.Sprintf("max retries (%d) exhausted", maxRetries), lastErr)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
