// Package preflight provides readiness checks for the metadata providers
// and filesystem paths that reelmatch depends on.
//
// The CLI "reelmatch check" command calls RunAll and renders each Result.
// Optional integrations (OMDb ratings, ntfy notifications) are skipped
// when they are not configured.
package preflight
