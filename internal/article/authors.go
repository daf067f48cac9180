package article

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownAuthor is the placeholder some sources use when no author is known.
// It never counts as a distinct author.
const UnknownAuthor = "Unknown"

// Authors is the ordered author list of an article.
// In JSON it accepts either a list of names or a free-text string;
// free text is split on commas and semicolons.
type Authors []string

// ParseAuthors splits free-text author lists such as "Smith J, Doe A".
func ParseAuthors(s string) Authors {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var authors Authors
	for _, f := range fields {
		if name := strings.TrimSpace(f); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// UnmarshalJSON accepts a string, a list of strings, or null.
func (a *Authors) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = ParseAuthors(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		var authors Authors
		for _, name := range list {
			if name = strings.TrimSpace(name); name != "" {
				authors = append(authors, name)
			}
		}
		*a = authors
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into Authors", string(data))
}

// String joins the names with ", ".
func (a Authors) String() string {
	return strings.Join(a, ", ")
}

// Known returns the names excluding the unknown sentinel.
func (a Authors) Known() []string {
	known := make([]string, 0, len(a))
	for _, name := range a {
		if strings.EqualFold(name, UnknownAuthor) {
			continue
		}
		known = append(known, name)
	}
	return known
}

// Contains reports whether sub occurs in the joined author text, ignoring case.
func (a Authors) Contains(sub string) bool {
	return strings.Contains(strings.ToLower(a.String()), strings.ToLower(sub))
}
