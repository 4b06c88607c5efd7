package corpus

import (
	"strings"
	"testing"
)

func TestMergeDeduplicatesAcrossSections(t *testing.T) {
	sections := []Section{
		{Name: "wikipedia.txt", Text: "Le Maroc organise la CAN 2025.\nLa finale aura lieu à Rabat."},
		{Name: "cafonline.txt", Text: "Le Maroc organise la CAN 2025.\nSix stades sont retenus."},
	}

	merged := Merge(sections)

	if strings.Count(merged, "Le Maroc organise la CAN 2025.") != 1 {
		t.Errorf("duplicate line kept: %q", merged)
	}
	if !strings.Contains(merged, "--- Contenu de wikipedia.txt ---") {
		t.Errorf("missing provenance header: %q", merged)
	}
	if !strings.Contains(merged, "--- Contenu de cafonline.txt ---") {
		t.Errorf("missing second provenance header: %q", merged)
	}
	if !strings.Contains(merged, "Six stades sont retenus.") {
		t.Errorf("unique line lost: %q", merged)
	}

	// First-seen order is preserved.
	if strings.Index(merged, "wikipedia.txt") > strings.Index(merged, "cafonline.txt") {
		t.Errorf("section order not preserved: %q", merged)
	}
}

func TestMergeOmitsEmptySections(t *testing.T) {
	sections := []Section{
		{Name: "a.txt", Text: "Une seule ligne."},
		{Name: "vide.txt", Text: "   \n\n  "},
		{Name: "doublon.txt", Text: "Une seule ligne."},
	}

	merged := Merge(sections)

	if strings.Contains(merged, "vide.txt") {
		t.Errorf("empty section emitted a header: %q", merged)
	}
	if strings.Contains(merged, "doublon.txt") {
		t.Errorf("all-duplicate section emitted a header: %q", merged)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	sections := []Section{
		{Name: "s1.txt", Text: "Ligne A\nLigne B"},
		{Name: "s2.txt", Text: "Ligne B\nLigne C"},
	}

	once := Merge(sections)
	twice := Merge(ParseMerged(once))

	if once != twice {
		t.Errorf("merge not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	sections := []Section{
		{Name: "x.txt", Text: "alpha\nbeta"},
		{Name: "y.txt", Text: "gamma"},
	}
	if Merge(sections) != Merge(sections) {
		t.Error("merging the same inputs twice produced different output")
	}
}

func TestParseMergedRoundTrip(t *testing.T) {
	sections := []Section{
		{Name: "round.txt", Text: "un\ndeux\ntrois"},
	}
	parsed := ParseMerged(Merge(sections))
	if len(parsed) != 1 {
		t.Fatalf("expected 1 section, got %d", len(parsed))
	}
	if parsed[0].Name != "round.txt" {
		t.Errorf("name: got %q", parsed[0].Name)
	}
	if parsed[0].Text != "un\ndeux\ntrois" {
		t.Errorf("text: got %q", parsed[0].Text)
	}
}
