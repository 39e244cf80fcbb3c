// Package matching resolves a sparse primary-catalogue record to a single
// provider record.
//
// Engine.Match runs a fixed, ordered list of search strategies. Each strategy
// issues provider searches through a retry.Strategy, pre-filters the hits by
// release year, fetches full details for the survivors and scores them with
// the Scorer. The first strategy whose best candidate reaches
// AcceptanceThreshold wins; otherwise the lookup fails with
// KindNoConfidentMatch. Every failure is reported on the MatchResult, never as
// a returned error or panic.
//
// The engine keeps no state between calls. Persisting results and throttling
// requests are the caller's and the HTTP client's concerns.
package matching
