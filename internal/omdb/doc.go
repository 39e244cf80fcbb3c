// Package omdb fetches secondary ratings (IMDb, Rotten Tomatoes, Metacritic)
// for an already resolved IMDb id.
//
// Requests rotate round-robin through a pool of API keys held by a KeyRing.
// Rejected or rate-limited keys are recorded for operators but stay in the
// rotation.
package omdb
