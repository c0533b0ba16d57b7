package domain

import "time"

type ScanStatus string

const (
	ScanStatusPending    ScanStatus = "pending"
	ScanStatusProcessing ScanStatus = "processing"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusFailed     ScanStatus = "failed"
)

// FailedScore is the reserved overall score for a failed scan. A completed
// scan with zero findings scores 0, never -1.
const FailedScore = -1

type ScanClassification string

const (
	ScanSafe           ScanClassification = "safe"
	ScanReview         ScanClassification = "review"
	ScanActionRequired ScanClassification = "action_required"
)

type MatchClassification string

const (
	MatchQuotedCorrectly MatchClassification = "quoted_correctly"
	MatchCommonPhrase    MatchClassification = "common_phrase"
	MatchNeedsCitation   MatchClassification = "needs_citation"
	MatchCloseParaphrase MatchClassification = "close_paraphrase"
	MatchSafe            MatchClassification = "safe"
)

// SourceKind identifies the authority tier of a reference provider.
type SourceKind string

const (
	SourceAcademic   SourceKind = "academic"
	SourceJournal    SourceKind = "journal"
	SourceRepository SourceKind = "repository"
	SourceWeb        SourceKind = "web"
)

// Authoritative reports whether matches from this kind of source are held to
// the stricter classification thresholds.
func (k SourceKind) Authoritative() bool {
	switch k {
	case SourceAcademic, SourceJournal, SourceRepository:
		return true
	default:
		return false
	}
}

// Scan is one invocation of the originality pipeline over one document
// version. ContentHash is computed over the normalized body and keys the
// per-owner result cache.
type Scan struct {
	ID             string             `json:"id"`
	SubjectID      string             `json:"subject_id"`
	OwnerID        string             `json:"owner_id"`
	ContentHash    string             `json:"content_hash"`
	Status         ScanStatus         `json:"status"`
	OverallScore   float64            `json:"overall_score"`
	Classification ScanClassification `json:"classification,omitempty"`
	Matches        []Match            `json:"matches,omitempty"`
	ScannedAt      time.Time          `json:"scanned_at"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Match is one flagged correspondence between a span of the submitted text
// and an external source. Positions are rune offsets into the scanned body
// and stay valid for highlight rendering regardless of completion order.
type Match struct {
	ID              string              `json:"id"`
	ScanID          string              `json:"scan_id"`
	SentenceText    string              `json:"sentence_text"`
	PositionStart   int                 `json:"position_start"`
	PositionEnd     int                 `json:"position_end"`
	MatchedSource   string              `json:"matched_source"`
	SourceURL       string              `json:"source_url"`
	SourceDatabase  string              `json:"source_database"`
	SimilarityScore float64             `json:"similarity_score"`
	Classification  MatchClassification `json:"classification"`
	Confidence      float64             `json:"confidence"`
	CreatedAt       time.Time           `json:"created_at"`
}

// SourceCandidate is one result returned by a reference provider for a
// scanned sentence.
type SourceCandidate struct {
	Snippet    string     `json:"snippet"`
	SourceURL  string     `json:"source_url"`
	SourceName string     `json:"source_name"`
	Kind       SourceKind `json:"kind"`
}

// DraftComparison summarizes how much of a new draft reuses a prior draft by
// the same author.
type DraftComparison struct {
	FingerprintOverlap float64 `json:"fingerprint_overlap"`
	WordCoverage       float64 `json:"word_coverage"`
}

// ClassifyOverall buckets a 0-100 aggregate score. Boundary semantics: 24.0
// is safe, anything above 24 up to (not including) 50 is review, 50.0 and up
// is action_required.
func ClassifyOverall(score float64) ScanClassification {
	switch {
	case score >= 50:
		return ScanActionRequired
	case score > 24:
		return ScanReview
	default:
		return ScanSafe
	}
}
