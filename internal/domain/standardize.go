package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nameDropRe matches punctuation removed without leaving a gap, so
	// "L.L.C." becomes "LLC" and "O'BRIEN" becomes "OBRIEN".
	nameDropRe = regexp.MustCompile(`[.'’]`)

	// nameSpaceRe matches everything else that is not a letter, digit, or
	// ampersand; those characters become word breaks.
	nameSpaceRe = regexp.MustCompile(`[^\p{L}\p{N}&\s]+`)

	// zipRe accepts a 5-digit ZIP, ZIP+4 without a separator, or five
	// digits followed by a hyphen or space and any digits.
	zipRe = regexp.MustCompile(`^(\d{5})(?:\d{4}|[-\s]+\d*)?$`)
)

// nameTokens canonicalizes single corporate-suffix words.
// Values must never appear as keys so the mapping stays idempotent.
var nameTokens = map[string]string{
	"COMPANY":      "CO",
	"CORPORATION":  "CORP",
	"INCORPORATED": "INC",
	"LIMITED":      "LTD",
	"ASSOCIATION":  "ASSN",
	"ASSOCIATES":   "ASSOC",
	"BROTHERS":     "BROS",
	"AND":          "&",
}

// namePhrases canonicalizes multi-word suffixes after nameTokens has run.
var namePhrases = []struct {
	words []string
	canon string
}{
	{[]string{"LTD", "LIABILITY", "CO"}, "LLC"},
	{[]string{"LTD", "LIABILITY", "CORP"}, "LLC"},
	{[]string{"LTD", "LIABILITY", "PARTNERSHIP"}, "LLP"},
	{[]string{"LTD", "PARTNERSHIP"}, "LP"},
	{[]string{"L", "L", "C"}, "LLC"},
	{[]string{"L", "L", "P"}, "LLP"},
	{[]string{"L", "P"}, "LP"},
}

// CleanText folds diacritics, trims, collapses internal whitespace, and
// uppercases s. Blank input returns "".
func CleanText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	// Transformers carry state, so each call builds its own chain.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// StandardizeOwnerName normalizes a registrant name so spelling variants of
// the same entity converge: "The Boeing Co.", "BOEING CO", and
// "Boeing Company" all become "BOEING CO". It is idempotent.
func StandardizeOwnerName(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	s = nameDropRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " & ")
	s = nameSpaceRe.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	for len(tokens) > 1 && tokens[0] == "THE" {
		tokens = tokens[1:]
	}
	for i, tok := range tokens {
		if canon, ok := nameTokens[tok]; ok {
			tokens[i] = canon
		}
	}
	tokens = replacePhrases(tokens)
	return strings.Join(tokens, " ")
}

// replacePhrases rewrites namePhrases matches left to right.
func replacePhrases(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		matched := false
		for _, p := range namePhrases {
			if hasPrefixTokens(tokens[i:], p.words) {
				out = append(out, p.canon)
				i += len(p.words)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out
}

func hasPrefixTokens(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i := range prefix {
		if tokens[i] != prefix[i] {
			return false
		}
	}
	return true
}

// CombineAddress joins two address lines into one cleaned line separated by
// a single space. Empty lines are omitted.
func CombineAddress(line1, line2 string) string {
	parts := make([]string, 0, 2)
	for _, line := range []string{line1, line2} {
		if c := CleanText(line); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// StandardizeState maps a state name or code to its 2-letter USPS code.
// Unrecognized values are returned cleaned and uppercased.
func StandardizeState(s string) string {
	s = CleanText(s)
	if s == "" || IsStateCode(s) {
		return s
	}
	if code, ok := usStateNames[s]; ok {
		return code
	}
	return s
}

// StandardizeZip returns the 5-digit ZIP from a ZIP or extended ZIP value.
// Anything else, including foreign postal codes, returns "".
func StandardizeZip(s string) string {
	m := zipRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[1]
}
