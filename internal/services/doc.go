// Package services defines shared utilities consumed by the matching engine and
// its provider clients.
//
// Key responsibilities:
//   - Context helpers that stamp catalog item IDs, strategy names, batch run
//     IDs, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (not found vs. rate limited vs. configuration) with errors.Is.
package services
