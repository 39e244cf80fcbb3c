package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldDiacritics strips combining marks so "Kieślowski" compares equal to
// "Kieslowski". Characters without a decomposition are left untouched.
func FoldDiacritics(value string) string {
	if value == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// NormalizeName lowercases, folds diacritics, turns hyphens into spaces, and
// collapses whitespace. It is the canonical form for person-name comparison.
func NormalizeName(value string) string {
	value = strings.ToLower(FoldDiacritics(value))
	value = strings.NewReplacer("-", " ", "‐", " ", "–", " ").Replace(value)
	return strings.Join(strings.Fields(value), " ")
}

// processForFuzzy mirrors the usual fuzzy-matching preprocessing: lowercase,
// every non letter/digit becomes a space, trimmed.
func processForFuzzy(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.TrimSpace(b.String())
}
