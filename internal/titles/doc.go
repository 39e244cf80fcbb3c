// Package titles expands a catalogue title into the ordered set of spellings
// worth sending to a metadata search: edition noise is stripped, conjunctions
// are dropped, and British/American spelling and vocabulary substitutions are
// generated with the original capitalization preserved.
package titles
