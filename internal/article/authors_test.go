package article

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAuthors_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Authors
	}{
		{"free text single", `"Smith J"`, Authors{"Smith J"}},
		{"free text comma list", `"Smith J, Doe A"`, Authors{"Smith J", "Doe A"}},
		{"free text semicolons", `"Smith J; Doe A;"`, Authors{"Smith J", "Doe A"}},
		{"list", `["Smith J", " Doe A ", ""]`, Authors{"Smith J", "Doe A"}},
		{"null", `null`, nil},
		{"empty string", `""`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Authors
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestAuthors_UnmarshalJSON_Invalid(t *testing.T) {
	var got Authors
	if err := json.Unmarshal([]byte(`{"name": "x"}`), &got); err == nil {
		t.Error("expected error for object input")
	}
}

func TestAuthors_Known(t *testing.T) {
	a := Authors{"Smith J", "unknown", "Unknown", "Doe A"}
	got := a.Known()
	want := []string{"Smith J", "Doe A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Known() = %v, want %v", got, want)
	}
}

func TestAuthors_Contains(t *testing.T) {
	a := Authors{"Smith J", "Doe A"}
	if !a.Contains("smith") {
		t.Error("expected case-insensitive match")
	}
	if !a.Contains("J, Doe") {
		t.Error("expected match across joined names")
	}
	if a.Contains("Jones") {
		t.Error("unexpected match")
	}
}
