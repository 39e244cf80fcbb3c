// Package config loads, normalizes, and validates reelmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and OMDB_API_KEYS. Retry budgets for both providers, the batch
// worker pool size, and logging knobs live here; the match acceptance
// threshold deliberately does not.
package config
