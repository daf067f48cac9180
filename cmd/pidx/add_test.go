package main

import (
	"os"
	"path/filepath"
	"testing"
)

func resetAddFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		addID, addTitle, addAbstract, addAuthors, addSource, addPubDate, addFile = "", "", "", "", "", "", ""
	})
}

func TestAddCandidates_FromFlags(t *testing.T) {
	resetAddFlags(t)
	addID = " 123 "
	addTitle = "Vaccine study"
	addAbstract = "mRNA vaccine efficacy."
	addAuthors = "Smith J; Doe A"
	addPubDate = "2023-01-15"

	got, errs := addCandidates()
	if len(errs) != 0 || len(got) != 1 {
		t.Fatalf("addCandidates() = %v, %v", got, errs)
	}
	a := got[0]
	if a.ID != "123" || a.Title != "Vaccine study" {
		t.Errorf("candidate = %+v", a)
	}
	if len(a.Authors) != 2 || a.Authors[1] != "Doe A" {
		t.Errorf("Authors = %v", a.Authors)
	}
	if a.PubDate.String() != "2023-01-15" {
		t.Errorf("PubDate = %q", a.PubDate.String())
	}
}

func TestAddCandidates_NoText(t *testing.T) {
	resetAddFlags(t)
	addID = "123"
	addSource = "J Med"

	got, errs := addCandidates()
	if len(got) != 0 || len(errs) != 0 {
		t.Errorf("addCandidates() = %v, %v; want nothing", got, errs)
	}
}

func TestAddCandidates_DefaultsUnknownAuthor(t *testing.T) {
	resetAddFlags(t)
	addTitle = "Anonymous note"

	got, _ := addCandidates()
	if len(got) != 1 || len(got[0].Authors) != 1 || got[0].Authors[0] != "Unknown" {
		t.Errorf("candidates = %+v", got)
	}
}

func TestAddCandidates_FromFile(t *testing.T) {
	resetAddFlags(t)
	path := filepath.Join(t.TempDir(), "articles.json")
	data := `[{"id": "1", "title": "One"}, {"id": "2", "source": "no text"}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	addFile = path

	got, errs := addCandidates()
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("candidates = %+v", got)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v, want 1", errs)
	}
}
