package pdf

import "testing"

const samplePage = `Journal of Medical Virology 2023; Volume 95, Issue 1
Efficacy of mRNA vaccines against severe COVID-19 in older adults
Jane Smith, Alan Doe
https://doi.org/10.1002/jmv.28101.
Abstract
Older adults are at increased risk of severe disease. We estimated vaccine effec-
tiveness in a cohort of 12,000 adults aged 65 and over.

Keywords: vaccine, COVID-19, cohort
1. Introduction
Vaccines were rolled out in 2021.
`

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"url form", "see https://doi.org/10.1038/nature12373.", "10.1038/nature12373"},
		{"bare", "DOI: 10.1101/2023.01.15.524098", "10.1101/2023.01.15.524098"},
		{"parenthesized", "(doi 10.1234/abcd.5)", "10.1234/abcd.5"},
		{"none", "no identifier here", ""},
		{"too short registrant", "10.12/abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1038/nature12373", true},
		{"10.1000/", false},
		{"11.1038/nature", false},
		{"10.1/x", false},
	}
	for _, tt := range tests {
		if got := isValidDOI(tt.doi); got != tt.want {
			t.Errorf("isValidDOI(%q) = %v, want %v", tt.doi, got, tt.want)
		}
	}
}

func TestFindTitle(t *testing.T) {
	if got := findTitle(samplePage); got != "Efficacy of mRNA vaccines against severe COVID-19 in older adults" {
		t.Errorf("findTitle() = %q", got)
	}
	if got := findTitle("short\nlines\nonly"); got != "" {
		t.Errorf("findTitle() = %q, want empty", got)
	}
}

func TestFindAbstract(t *testing.T) {
	want := "Older adults are at increased risk of severe disease. We estimated vaccine " +
		"effectiveness in a cohort of 12,000 adults aged 65 and over."
	if got := findAbstract(samplePage); got != want {
		t.Errorf("findAbstract() =\n%q\nwant\n%q", got, want)
	}
}

func TestFindAbstract_InlineHeading(t *testing.T) {
	text := "A Title That Is Long Enough\nAbstract: We study things.\nMore detail here.\nIntroduction\nBody."
	want := "We study things. More detail here."
	if got := findAbstract(text); got != want {
		t.Errorf("findAbstract() = %q, want %q", got, want)
	}
}

func TestFindAbstract_Missing(t *testing.T) {
	if got := findAbstract("Abstracts of talks are not abstracts\nBody"); got != "" {
		t.Errorf("findAbstract() = %q, want empty", got)
	}
}

func TestFromText(t *testing.T) {
	a := FromText(samplePage)
	if a.ID != "10.1002/jmv.28101" {
		t.Errorf("ID = %q", a.ID)
	}
	if a.Title == "" || a.Abstract == "" {
		t.Errorf("incomplete article: %+v", a)
	}
	if a.Authors.String() != "Unknown" {
		t.Errorf("Authors = %q, want Unknown", a.Authors.String())
	}
}

func TestIsHeaderLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Journal of Medical Virology", true},
		{"Volume 12, Issue 3", true},
		{"Copyright 2023 the authors", true},
		{"© 2023 Elsevier", true},
		{"Article first published online", true},
		{"https://example.org/paper", true},
		{"Efficacy of mRNA vaccines", false},
	}
	for _, tt := range tests {
		if got := isHeaderLine(tt.line); got != tt.want {
			t.Errorf("isHeaderLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestJoinHyphenated(t *testing.T) {
	got := joinHyphenated([]string{"a vaccine effec-", "tiveness study", "and  more"})
	if got != "a vaccine effectiveness study and more" {
		t.Errorf("joinHyphenated() = %q", got)
	}
}

func TestExtractArticle_MissingFile(t *testing.T) {
	if _, err := ExtractArticle("does-not-exist.pdf", 0); err == nil {
		t.Error("expected error for missing file")
	}
}
