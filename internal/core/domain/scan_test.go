package domain

import "testing"

func TestClassifyOverallBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  ScanClassification
	}{
		{0, ScanSafe},
		{24, ScanSafe},
		{24.01, ScanReview},
		{49.99, ScanReview},
		{50, ScanActionRequired},
		{100, ScanActionRequired},
	}
	for _, tc := range cases {
		if got := ClassifyOverall(tc.score); got != tc.want {
			t.Fatalf("ClassifyOverall(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestSourceKindAuthoritative(t *testing.T) {
	for _, kind := range []SourceKind{SourceAcademic, SourceJournal, SourceRepository} {
		if !kind.Authoritative() {
			t.Fatalf("%s must be authoritative", kind)
		}
	}
	if SourceWeb.Authoritative() {
		t.Fatalf("web sources are not authoritative")
	}
}

func TestWrapErrorKeepsKindAndCause(t *testing.T) {
	cause := ErrScanNotFound
	err := WrapError(ErrTemporary, "lookup", cause)
	if !IsKind(err, ErrTemporary) {
		t.Fatalf("expected temporary kind: %v", err)
	}
	if !IsKind(err, ErrScanNotFound) {
		t.Fatalf("expected cause preserved: %v", err)
	}
	if WrapError(ErrTemporary, "lookup", nil) != nil {
		t.Fatalf("nil cause must stay nil")
	}
}
