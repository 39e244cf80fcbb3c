package titles

import (
	"strconv"
	"strings"
)

var splitSeparators = []string{":", " - ", " – ", "(", "["}

// SanitizeQuery replaces underscores with spaces and collapses whitespace.
func SanitizeQuery(query string) string {
	return collapse(strings.ReplaceAll(query, "_", " "))
}

// CoreTitle returns the part of title before the earliest subtitle separator
// (":", " - ", " – ", "(", "["). The second return value is false when no
// separator occurs or nothing usable precedes it.
func CoreTitle(title string) (string, bool) {
	cut := -1
	for _, sep := range splitSeparators {
		if idx := strings.Index(title, sep); idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
		}
	}
	if cut <= 0 {
		return "", false
	}
	core := collapse(title[:cut])
	if core == "" {
		return "", false
	}
	return core, true
}

// YearFromDate parses the leading year from a YYYY-MM-DD date. It returns 0
// when the date is empty or malformed.
func YearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
