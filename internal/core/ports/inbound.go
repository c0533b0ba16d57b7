package ports

import (
	"context"

	"github.com/paperlens/originality/internal/core/domain"
)

// ScanService is the inbound contract for originality scanning.
type ScanService interface {
	StartScan(ctx context.Context, subjectID, ownerID, content string) (*domain.Scan, error)
	GetScan(ctx context.Context, id string) (*domain.Scan, error)
}

// DraftComparator is the inbound contract for draft-vs-draft
// self-comparison (resubmission detection).
type DraftComparator interface {
	CompareDrafts(ctx context.Context, newDraft, priorDraft string) (domain.DraftComparison, error)
}
