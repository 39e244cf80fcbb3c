package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Ratio returns the indel similarity of a and b on a 0-100 scale:
// 2*LCS / (len(a)+len(b)), computed over runes.
func Ratio(a, b string) int {
	return int(math.Round(ratio(a, b)))
}

func ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la+lb == 0 {
		return 100
	}
	if la == 0 || lb == 0 {
		return 0
	}
	lcs := edlib.LCS(a, b)
	return 200 * float64(lcs) / float64(la+lb)
}

// PartialRatio scores the shorter string against the best-aligned window of
// the longer one.
func PartialRatio(a, b string) int {
	return int(math.Round(partialRatio(a, b)))
}

func partialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	best := 0.0
	needle := string(shorter)
	for start := 0; start+len(shorter) <= len(longer); start++ {
		score := ratio(needle, string(longer[start:start+len(shorter)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares both inputs after sorting their tokens.
func TokenSortRatio(a, b string) int {
	return int(math.Round(ratio(sortedTokens(processForFuzzy(a)), sortedTokens(processForFuzzy(b)))))
}

// TokenSetRatio compares the shared token set of both inputs against each
// side's remainder, so "Omen" scores 100 against "Omen (Augure)" style titles
// whose extra tokens only appear on one side.
func TokenSetRatio(a, b string) int {
	return int(math.Round(tokenSet(processForFuzzy(a), processForFuzzy(b), ratio)))
}

// WRatio is the weighted best-of similarity used for person names: plain
// ratio, token-order-insensitive ratios, and partial ratios when one side is
// much longer than the other.
func WRatio(a, b string) int {
	p1, p2 := processForFuzzy(a), processForFuzzy(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	const unbaseScale = 0.95
	partialScale := 0.90

	base := ratio(p1, p2)
	l1, l2 := float64(utf8.RuneCountInString(p1)), float64(utf8.RuneCountInString(p2))
	lenRatio := math.Max(l1, l2) / math.Min(l1, l2)

	if lenRatio < 1.5 {
		tsor := ratio(sortedTokens(p1), sortedTokens(p2)) * unbaseScale
		tser := tokenSet(p1, p2, ratio) * unbaseScale
		return int(math.Round(math.Max(base, math.Max(tsor, tser))))
	}

	if lenRatio > 8 {
		partialScale = 0.6
	}
	partial := partialRatio(p1, p2) * partialScale
	ptsor := partialRatio(sortedTokens(p1), sortedTokens(p2)) * unbaseScale * partialScale
	ptser := tokenSet(p1, p2, partialRatio) * unbaseScale * partialScale
	return int(math.Round(math.Max(math.Max(base, partial), math.Max(ptsor, ptser))))
}

func sortedTokens(value string) string {
	tokens := strings.Fields(value)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(p1, p2 string, scorer func(string, string) float64) float64 {
	if p1 == "" || p2 == "" {
		return 0
	}
	set1 := tokenSetOf(p1)
	set2 := tokenSetOf(p2)

	var shared, only1, only2 []string
	for token := range set1 {
		if _, ok := set2[token]; ok {
			shared = append(shared, token)
		} else {
			only1 = append(only1, token)
		}
	}
	for token := range set2 {
		if _, ok := set1[token]; !ok {
			only2 = append(only2, token)
		}
	}
	sort.Strings(shared)
	sort.Strings(only1)
	sort.Strings(only2)

	sect := strings.Join(shared, " ")
	combined1 := strings.TrimSpace(sect + " " + strings.Join(only1, " "))
	combined2 := strings.TrimSpace(sect + " " + strings.Join(only2, " "))

	best := scorer(combined1, combined2)
	if sect != "" {
		best = math.Max(best, scorer(sect, combined1))
		best = math.Max(best, scorer(sect, combined2))
	}
	return best
}

func tokenSetOf(value string) map[string]struct{} {
	fields := strings.Fields(value)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
