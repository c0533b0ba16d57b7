package fingerprint

import (
	"strings"
	"testing"
)

func TestNewPositionCountMatchesWordCount(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	idx := New(text, 4)

	positions := 0
	for _, p := range idx {
		positions += len(p)
	}
	if positions != 7 { // 10 words, window 4
		t.Fatalf("expected 7 positions, got %d", positions)
	}
}

func TestNewShortTextYieldsNoFingerprints(t *testing.T) {
	if idx := New("too few words", 8); len(idx) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(idx))
	}
}

func TestCompareSelfIsAlwaysFull(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog near the river bank today"
	idx := New(text, 5)
	if got := Compare(idx, idx); got != 100 {
		t.Fatalf("self comparison = %v, want 100", got)
	}
}

func TestCompareIsOrderIndependentAcrossBlocks(t *testing.T) {
	blockA := "alpha beta gamma delta epsilon zeta"
	blockB := "one two three four five six"
	idxAB := New(blockA+" "+blockB, 3)
	idxBA := New(blockB+" "+blockA, 3)

	// Reordered blocks share every within-block window; only the seam
	// windows differ, so overlap stays high in both directions.
	forward := Compare(idxAB, idxBA)
	backward := Compare(idxBA, idxAB)
	if forward != backward {
		t.Fatalf("expected symmetric overlap for equal-size sets, got %v vs %v", forward, backward)
	}
	if forward < 50 {
		t.Fatalf("expected substantial overlap despite reordering, got %v", forward)
	}
}

func TestCompareDisjointTextsIsZero(t *testing.T) {
	a := New("completely original writing with unique vocabulary throughout", 3)
	b := New("entirely different content sharing nothing at all here", 3)
	if got := Compare(a, b); got != 0 {
		t.Fatalf("disjoint comparison = %v, want 0", got)
	}
}

func TestCompareEmptyIndexIsZero(t *testing.T) {
	b := New("some prior draft content with enough words present", 3)
	if got := Compare(Index{}, b); got != 0 {
		t.Fatalf("empty index comparison = %v, want 0", got)
	}
}

func TestCoverageCountsReusedWords(t *testing.T) {
	prior := "the experiment was repeated three times under identical conditions"
	reused := prior + " and then novel analysis followed with fresh commentary appended here"

	got := Coverage(reused, prior, 4)
	if got <= 0 || got >= 100 {
		t.Fatalf("expected partial coverage, got %v", got)
	}

	words := len(strings.Fields(reused))
	covered := len(strings.Fields(prior))
	want := 100 * float64(covered) / float64(words)
	if got != want {
		t.Fatalf("Coverage() = %v, want %v", got, want)
	}
}

func TestCoverageFullReuseIsFull(t *testing.T) {
	text := "identical draft resubmitted without any changes at all whatsoever today"
	if got := Coverage(text, text, 4); got != 100 {
		t.Fatalf("full reuse coverage = %v, want 100", got)
	}
}
