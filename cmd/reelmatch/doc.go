// Command reelmatch resolves catalogue titles against the external metadata
// provider, enriches accepted matches with secondary ratings and keeps the
// outcomes in a local SQLite store.
//
// Subcommands:
//
//	match     resolve a single title
//	batch     resolve every pending item of a catalogue file
//	ratings   fetch secondary ratings for an IMDb id
//	bayesian  recompute composite ratings in a catalogue file
//	check     verify provider connectivity and credentials
//	genres    list provider genres
//	store     inspect or clear stored outcomes
//	config    create or validate configuration
package main
