package titles

import (
	"regexp"
	"strings"
)

// wordPair is one regional spelling or vocabulary equivalence. Every pair is
// applied in both directions.
type wordPair struct {
	a string
	b string
}

var regionalPairs = []wordPair{
	// British / American spelling
	{"color", "colour"},
	{"theater", "theatre"},
	{"honor", "honour"},
	{"realize", "realise"},
	{"organize", "organise"},
	{"analyze", "analyse"},
	{"apologize", "apologise"},
	{"center", "centre"},
	{"meter", "metre"},
	{"defense", "defence"},
	{"offense", "offence"},
	{"traveling", "travelling"},
	{"jewelry", "jewellery"},
	{"catalog", "catalogue"},
	{"dialog", "dialogue"},
	{"practice", "practise"},
	{"license", "licence"},
	{"check", "cheque"},
	// Regional vocabulary
	{"elevator", "lift"},
	{"truck", "lorry"},
	{"apartment", "flat"},
	{"cookie", "biscuit"},
	{"soccer", "football"},
	{"fall", "autumn"},
	{"diaper", "nappy"},
	{"flashlight", "torch"},
	{"garbage", "rubbish"},
	{"sneakers", "trainers"},
	{"vacation", "holiday"},
	{"hood", "bonnet"},
	{"trunk", "boot"},
	{"mail", "post"},
	{"zip code", "postcode"},
}

type substitution struct {
	pattern *regexp.Regexp
	to      string
}

// spellingSubstitutions is regionalPairs expanded into an ordered,
// directional list with each source word compiled once.
var spellingSubstitutions = compileSubstitutions(regionalPairs)

func compileSubstitutions(pairs []wordPair) []substitution {
	out := make([]substitution, 0, len(pairs)*2)
	for _, pair := range pairs {
		out = append(out,
			substitution{pattern: wordPattern(pair.a), to: pair.b},
			substitution{pattern: wordPattern(pair.b), to: pair.a},
		)
	}
	return out
}

func wordPattern(word string) *regexp.Regexp {
	parts := strings.Fields(word)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}
