package importer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// splitName splits a full name into given names and family name.
// Multi-part surnames such as "van der Waals" are not recognized.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}

	n := len(parts)
	if nameSuffixes[strings.ToLower(parts[n-1])] && n > 2 {
		return strings.Join(parts[:n-2], " "), parts[n-2] + " " + parts[n-1]
	}
	return strings.Join(parts[:n-1], " "), parts[n-1]
}

// citationName formats a name the way PubMed lists authors: family name
// followed by initials, as in "Smith JA".
func citationName(first, last string) string {
	last = strings.TrimSpace(last)
	var initials strings.Builder
	for _, part := range strings.FieldsFunc(first, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '.'
	}) {
		r, _ := utf8.DecodeRuneInString(part)
		if unicode.IsLetter(r) {
			initials.WriteRune(unicode.ToUpper(r))
		}
	}

	switch {
	case last == "":
		return initials.String()
	case initials.Len() == 0:
		return last
	default:
		return last + " " + initials.String()
	}
}
