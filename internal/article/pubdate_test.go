package article

import (
	"encoding/json"
	"testing"
)

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		input            string
		year, month, day int
	}{
		{"2023-01-15", 2023, 1, 15},
		{"2023-01", 2023, 1, 0},
		{"2023", 2023, 0, 0},
		{"2023/3/7", 2023, 3, 7},
		{"2023 Jan 15", 2023, 1, 15},
		{"2023 September", 2023, 9, 0},
		{"2023-13-01", 2023, 0, 0},
		{"Spring 2023", 0, 0, 0},
		{"", 0, 0, 0},
		{"  2021-06-30  ", 2021, 6, 30},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := ParsePubDate(tt.input)
			if d.Year != tt.year || d.Month != tt.month || d.Day != tt.day {
				t.Errorf("ParsePubDate(%q) = %d-%d-%d, want %d-%d-%d",
					tt.input, d.Year, d.Month, d.Day, tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestPubDate_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2023-01-15", "2023-01-15", 0},
		{"2023-01-15", "2023-01-16", -1},
		{"2024", "2023-12-31", 1},
		{"2023", "2023-01", -1},
		{"2023 Feb", "2023-01-31", 1},
		{"Spring 2023", "Summer 2023", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			got := ParsePubDate(tt.a).Compare(ParsePubDate(tt.b))
			if got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPubDate_JSON(t *testing.T) {
	var d PubDate
	if err := json.Unmarshal([]byte(`2019`), &d); err != nil {
		t.Fatalf("Unmarshal number failed: %v", err)
	}
	if d.Year != 2019 || d.Raw != "2019" {
		t.Errorf("got %+v", d)
	}

	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if !d.IsZero() {
		t.Errorf("expected zero date, got %+v", d)
	}

	data, err := json.Marshal(ParsePubDate("2023 Jan 15"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2023 Jan 15"` {
		t.Errorf("Marshal = %s", data)
	}
}
