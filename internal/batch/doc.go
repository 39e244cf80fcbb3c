// Package batch runs many independent lookups on a bounded worker pool.
//
// Each record is resolved by a full engine lookup, optionally followed by a
// ratings fetch for accepted matches. Outcomes are returned in the caller's
// input order; one item's failure, including a panic inside its worker,
// never cancels or fails its siblings.
package batch
