// Package matchstore persists lookup outcomes in SQLite.
//
// The store belongs to the caller: batch runs record every MatchResult,
// keyed by catalogue item id, together with the run that produced it. The
// matching engine never reads from it. A file lock next to the database
// keeps a single writer process at a time.
package matchstore
