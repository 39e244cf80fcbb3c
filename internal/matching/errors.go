package matching

import (
	"context"
	"errors"

	"reelmatch/internal/retry"
	"reelmatch/internal/services"
)

// ErrorKind classifies a failed lookup.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindRateLimited      ErrorKind = "rate_limited"
	KindServerError      ErrorKind = "server_error"
	KindRetriesExhausted ErrorKind = "retries_exhausted"
	KindNoConfidentMatch ErrorKind = "no_confident_match"
	KindTransport        ErrorKind = "transport_error"
	KindConfiguration    ErrorKind = "configuration_error"
)

// KindFromError maps an error produced by the provider stack onto an
// ErrorKind.
func KindFromError(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrNotFound):
		return KindNotFound
	case errors.Is(err, services.ErrRetriesExhausted):
		return KindRetriesExhausted
	case errors.Is(err, services.ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, services.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	}
	if status := retry.StatusCode(err); status >= 500 {
		return KindServerError
	}
	return KindTransport
}

// Failure builds an unsuccessful MatchResult.
func Failure(kind ErrorKind, detail string) MatchResult {
	return MatchResult{Success: false, ErrorKind: kind, Detail: detail}
}
