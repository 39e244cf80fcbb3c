package titles

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespacePattern  = regexp.MustCompile(`\s+`)
	conjunctionPattern = regexp.MustCompile(`(?i)\band\b|&`)
	editionWords       = `director['’]?s\s+cut|redux|remastered|restored`

	cleanPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[(\[][^)\]]*?(?:` + editionWords + `)[^)\]]*?[)\]]`),
		regexp.MustCompile(`(?i)\s*[-–:]?\s*\b(?:` + editionWords + `)\b\s*$`),
		regexp.MustCompile(`(?i)\bdirector['’]?s\s+cut\b`),
		regexp.MustCompile(`(?i)\[MV\]`),
	}
)

// Normalizer generates the ordered list of title spellings worth searching
// for. The zero value is ready to use and safe for concurrent use.
type Normalizer struct{}

// Clean strips edition noise such as "(Director's Cut)", "Redux",
// "Remastered", "Restored", and "[MV]" markers.
func (Normalizer) Clean(title string) string {
	cleaned := title
	for _, pattern := range cleanPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, " ")
	}
	return collapse(cleaned)
}

// Normalize removes the conjunctions "and" and "&" and collapses whitespace.
func (Normalizer) Normalize(title string) string {
	return collapse(conjunctionPattern.ReplaceAllString(title, " "))
}

// AlternativeSpellings returns one title per regional substitution that
// changes the input, in dictionary order. The case of each replaced word is
// preserved: all caps stays all caps, title case stays title case.
func (Normalizer) AlternativeSpellings(title string) []string {
	var out []string
	seen := map[string]struct{}{strings.ToLower(title): {}}
	for _, sub := range spellingSubstitutions {
		if !sub.pattern.MatchString(title) {
			continue
		}
		replacement := sub.to
		candidate := sub.pattern.ReplaceAllStringFunc(title, func(match string) string {
			return matchCase(match, replacement)
		})
		key := strings.ToLower(candidate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// Variants returns the deduplicated, order-preserving list of titles to try:
// the trimmed title, the original title, the cleaned title, the
// conjunction-free title, then regional spelling alternatives of the cleaned
// (or raw) title. Empty candidates are dropped.
func (n Normalizer) Variants(title, originalTitle string) []string {
	raw := strings.TrimSpace(title)
	list := newVariantList()
	list.add(raw)

	if original := strings.TrimSpace(originalTitle); original != "" && !strings.EqualFold(original, raw) {
		list.add(original)
	}

	cleaned := n.Clean(raw)
	if cleaned != "" && !strings.EqualFold(cleaned, raw) {
		list.add(cleaned)
	}

	normalized := n.Normalize(raw)
	if normalized != "" && normalized != raw && normalized != cleaned {
		list.add(normalized)
	}

	base := cleaned
	if base == "" {
		base = raw
	}
	for _, alt := range n.AlternativeSpellings(base) {
		list.add(alt)
	}
	return list.values
}

type variantList struct {
	seen   map[string]struct{}
	values []string
}

func newVariantList() *variantList {
	return &variantList{seen: make(map[string]struct{})}
}

func (l *variantList) add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	key := strings.ToLower(value)
	if _, ok := l.seen[key]; ok {
		return
	}
	l.seen[key] = struct{}{}
	l.values = append(l.values, value)
}

func matchCase(match, replacement string) string {
	switch {
	case isAllUpper(match):
		return strings.ToUpper(replacement)
	case isTitleCase(match):
		return cases.Title(language.Und).String(replacement)
	default:
		return replacement
	}
}

func isAllUpper(value string) bool {
	hasLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitleCase(value string) bool {
	for _, word := range strings.Fields(value) {
		runes := []rune(word)
		if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return value != ""
}

func collapse(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}
