package article

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PubDate is a partial publication date. Raw keeps the text as supplied;
// Year, Month and Day are parsed from it once, 0 when absent or unparseable.
type PubDate struct {
	Raw   string
	Year  int
	Month int // 1-12, 0 if unknown
	Day   int // 1-31, 0 if unknown
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParsePubDate parses dates such as "2023", "2023-01", "2023-01-15",
// "2023/1/15" and PubMed-style "2023 Jan 15".
func ParsePubDate(s string) PubDate {
	d := PubDate{Raw: strings.TrimSpace(s)}
	parts := strings.FieldsFunc(d.Raw, func(r rune) bool {
		return r == '-' || r == '/' || r == ' ' || r == '.'
	})
	if len(parts) == 0 {
		return d
	}

	year, ok := leadingYear(parts[0])
	if !ok {
		return d
	}
	d.Year = year

	if len(parts) > 1 {
		d.Month = parseMonth(parts[1])
	}
	if len(parts) > 2 && d.Month != 0 {
		if day, err := strconv.Atoi(parts[2]); err == nil && day >= 1 && day <= 31 {
			d.Day = day
		}
	}
	return d
}

// leadingYear accepts a component made only of digits.
func leadingYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}

func parseMonth(s string) int {
	if m, err := strconv.Atoi(s); err == nil {
		if m >= 1 && m <= 12 {
			return m
		}
		return 0
	}
	if len(s) >= 3 {
		return monthNames[strings.ToLower(s[:3])]
	}
	return 0
}

// IsZero reports whether no date was supplied.
func (d PubDate) IsZero() bool {
	return d.Raw == ""
}

// HasYear reports whether a numeric year could be parsed.
func (d PubDate) HasYear() bool {
	return d.Year > 0
}

// Compare orders two dates. Parsed dates compare by (year, month, day) with
// missing components ordering first, which agrees with lexicographic order
// of zero-padded ISO dates. When either side has no parsed year the raw
// strings are compared.
func (d PubDate) Compare(o PubDate) int {
	if d.HasYear() && o.HasYear() {
		for _, pair := range [][2]int{{d.Year, o.Year}, {d.Month, o.Month}, {d.Day, o.Day}} {
			switch {
			case pair[0] < pair[1]:
				return -1
			case pair[0] > pair[1]:
				return 1
			}
		}
		return 0
	}
	return strings.Compare(d.Raw, o.Raw)
}

// String returns the date as supplied.
func (d PubDate) String() string {
	return d.Raw
}

// MarshalJSON encodes the date as its raw string.
func (d PubDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Raw)
}

// UnmarshalJSON accepts a string, a bare year number, or null.
func (d *PubDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = PubDate{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = ParsePubDate(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*d = ParsePubDate(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into PubDate", string(data))
}
