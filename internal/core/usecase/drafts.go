package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/fingerprint"
	"github.com/paperlens/originality/internal/core/normalize"
)

// DraftCompareUseCase detects resubmission of a writer's own prior work by
// fingerprinting both drafts. Fingerprints stay bounded here because both
// sides are single documents, unlike the external corpora path.
type DraftCompareUseCase struct {
	norm       *normalize.Normalizer
	windowSize int
}

func NewDraftCompareUseCase(norm *normalize.Normalizer, windowSize int) *DraftCompareUseCase {
	if windowSize <= 0 {
		windowSize = fingerprint.DefaultWindowSize
	}
	return &DraftCompareUseCase{norm: norm, windowSize: windowSize}
}

func (uc *DraftCompareUseCase) CompareDrafts(_ context.Context, newDraft, priorDraft string) (domain.DraftComparison, error) {
	newLex := uc.norm.NormalizeLexical(newDraft)
	priorLex := uc.norm.NormalizeLexical(priorDraft)
	if strings.TrimSpace(newLex) == "" || strings.TrimSpace(priorLex) == "" {
		return domain.DraftComparison{}, domain.WrapError(domain.ErrInvalidInput, "compare drafts", errors.New("empty draft after normalization"))
	}

	newIdx := fingerprint.New(newLex, uc.windowSize)
	priorIdx := fingerprint.New(priorLex, uc.windowSize)

	return domain.DraftComparison{
		FingerprintOverlap: fingerprint.Compare(newIdx, priorIdx),
		WordCoverage:       fingerprint.Coverage(newLex, priorLex, uc.windowSize),
	}, nil
}
