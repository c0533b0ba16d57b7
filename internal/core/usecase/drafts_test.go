package usecase

import (
	"context"
	"testing"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/normalize"
)

func newDraftComparator() *DraftCompareUseCase {
	return NewDraftCompareUseCase(normalize.New(normalize.Rules{}), 4)
}

func TestCompareDraftsIdenticalIsFullOverlap(t *testing.T) {
	uc := newDraftComparator()
	draft := "Renewable generation capacity expanded faster than grid storage technology during the last decade."

	got, err := uc.CompareDrafts(context.Background(), draft, draft)
	if err != nil {
		t.Fatalf("CompareDrafts() error = %v", err)
	}
	if got.FingerprintOverlap != 100 || got.WordCoverage != 100 {
		t.Fatalf("identical drafts: %+v", got)
	}
}

func TestCompareDraftsRewrittenIsLowOverlap(t *testing.T) {
	uc := newDraftComparator()

	got, err := uc.CompareDrafts(context.Background(),
		"Coastal erosion accelerates wherever mangrove forests disappear from tropical shorelines entirely.",
		"Municipal recycling programs struggle against contamination rates exceeding projected tolerances everywhere.")
	if err != nil {
		t.Fatalf("CompareDrafts() error = %v", err)
	}
	if got.FingerprintOverlap != 0 || got.WordCoverage != 0 {
		t.Fatalf("disjoint drafts: %+v", got)
	}
}

func TestCompareDraftsIgnoresPunctuationAndStopWords(t *testing.T) {
	uc := newDraftComparator()

	got, err := uc.CompareDrafts(context.Background(),
		"The renewable generation capacity expanded faster than the grid storage technology!",
		"renewable generation capacity expanded; faster than grid storage technology")
	if err != nil {
		t.Fatalf("CompareDrafts() error = %v", err)
	}
	if got.FingerprintOverlap != 100 {
		t.Fatalf("normalization-equivalent drafts should fully overlap: %+v", got)
	}
}

func TestCompareDraftsRejectsEmptyDrafts(t *testing.T) {
	uc := newDraftComparator()
	if _, err := uc.CompareDrafts(context.Background(), "", "prior draft with plenty of words here"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	// A draft of only stop words is empty after normalization.
	if _, err := uc.CompareDrafts(context.Background(), "the a an of to", "prior draft with plenty of words here"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for stop-word draft, got %v", err)
	}
}
