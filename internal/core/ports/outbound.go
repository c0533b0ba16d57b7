package ports

import (
	"context"
	"time"

	"github.com/paperlens/originality/internal/core/domain"
)

// ResultStore persists scan and match records. The core depends on these
// verbs only, plus lookup by owner and content hash; no storage technology
// is assumed.
type ResultStore interface {
	CreateScan(ctx context.Context, scan *domain.Scan) error
	GetScanByID(ctx context.Context, id string) (*domain.Scan, error)
	FindCompletedScan(ctx context.Context, ownerID, contentHash string) (*domain.Scan, error)
	UpdateScanStatus(ctx context.Context, id string, status domain.ScanStatus) error
	CompleteScan(ctx context.Context, id string, overallScore float64, classification domain.ScanClassification) error
	FailScan(ctx context.Context, id string) error
	CreateMatch(ctx context.Context, match *domain.Match) error
	ListMatches(ctx context.Context, scanID string) ([]domain.Match, error)
}

// SourceProvider searches one external reference corpus for a sentence.
// A provider missing credentials returns domain.ErrNotConfigured; transient
// faults return domain.ErrTemporary-wrapped errors.
type SourceProvider interface {
	Name() string
	Kind() domain.SourceKind
	Search(ctx context.Context, sentence string) ([]domain.SourceCandidate, error)
}

// SourceGateway fans a sentence out to the configured reference providers.
// It never returns an error for provider-side faults: rate limits, missing
// configuration and timeouts yield an empty candidate list.
type SourceGateway interface {
	Search(ctx context.Context, sentence string) []domain.SourceCandidate
}

// EmbeddingProvider turns a sentence into a fixed-dimension vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Reranker scores candidate documents against a query with a cross-encoder
// model. Scores align by index with documents and fall in [0,1].
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// Cache is the injected ephemeral store used for scan locking and velocity
// tracking. Implementations must not assume single-process affinity.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ScanQueue carries scan requests into the worker and completion events out.
type ScanQueue interface {
	PublishScanCompleted(ctx context.Context, scanID string) error
	SubscribeScanRequests(ctx context.Context, handler func(context.Context, ScanRequest) error) error
}

// ScanRequest is the queue payload asking for one document version scan.
// EnqueuedAt is stamped by the publisher and feeds queue lag measurement.
type ScanRequest struct {
	SubjectID  string    `json:"subject_id"`
	OwnerID    string    `json:"owner_id"`
	Content    string    `json:"content"`
	EnqueuedAt time.Time `json:"enqueued_at,omitempty"`
}
