// Package tmdb is the HTTP client for the matching provider.
//
// It exposes movie and TV search with an optional year filter, a detail fetch
// that expands credits, external ids and alternative titles in a single round
// trip, a connectivity ping, and genre lists. Non-200 responses surface as
// *retry.StatusError so callers can wrap requests in a retry.Strategy.
// Requests are spaced by a minimum interval shared by every goroutine using
// the same Client.
package tmdb
