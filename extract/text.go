package extract

import (
	"regexp"
	"strings"
	"time"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)

	// Both date forms the site prints: "September 12, 2025" and
	// "12 September 2025".
	monthNames = `(?:January|February|March|April|May|June|July|August|` +
		`September|October|November|December)`
	dateRe = regexp.MustCompile(`(?i)(?:` + monthNames + `\s+\d{1,2},\s*\d{4}` +
		`|\d{1,2}\s+` + monthNames + `\s+\d{4})`)
)

// NormalizeSpaces replaces NBSP variants with plain spaces and collapses
// runs of whitespace.
func NormalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u202f", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// FindDateText returns the first recognizable date substring in s, or "".
func FindDateText(s string) string {
	return NormalizeSpaces(dateRe.FindString(NormalizeSpaces(s)))
}

// ToISODate converts a human date ("March 3, 2023" or "3 March 2023") to
// "2023-03-03". The second return is false when the text doesn't parse.
func ToISODate(dateText string) (string, bool) {
	ds := NormalizeSpaces(strings.ReplaceAll(dateText, ",", ", "))
	ds = canonicalMonthCase(ds)

	for _, layout := range []string{"January 2, 2006", "2 January 2006"} {
		if t, err := time.Parse(layout, ds); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// canonicalMonthCase upper-cases the first letter of each word so that
// "march 3, 2023" parses; time.Parse wants exact month-name casing.
func canonicalMonthCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
			words[i] = string(r)
		}
	}
	return strings.Join(words, " ")
}
