package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/paperlens/originality/internal/core/domain"
)

// ScanRepository persists Scan and Match records. Matches are written only
// while the owning scan is processing and are never updated afterwards;
// there is deliberately no update path for them here.
type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ScanRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scans (
	id TEXT PRIMARY KEY,
	subject_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	status TEXT NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	classification TEXT,
	scanned_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_owner_hash ON scans(owner_id, content_hash);
CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);

CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	scan_id TEXT NOT NULL REFERENCES scans(id),
	sentence_text TEXT NOT NULL,
	position_start INTEGER NOT NULL,
	position_end INTEGER NOT NULL,
	matched_source TEXT,
	source_url TEXT,
	source_database TEXT,
	similarity_score DOUBLE PRECISION NOT NULL,
	classification TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_scan_id ON matches(scan_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ScanRepository) CreateScan(ctx context.Context, scan *domain.Scan) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scans (
	id, subject_id, owner_id, content_hash, status, overall_score, classification, scanned_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		scan.ID, scan.SubjectID, scan.OwnerID, scan.ContentHash, string(scan.Status),
		scan.OverallScore, string(scan.Classification), scan.ScannedAt, scan.CreatedAt, scan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *ScanRepository) GetScanByID(ctx context.Context, id string) (*domain.Scan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, subject_id, owner_id, content_hash, status, overall_score, classification, scanned_at, created_at, updated_at
FROM scans
WHERE id = $1
`, id)
	return scanRow(row)
}

// FindCompletedScan returns the newest completed scan for identical
// normalized content by the same owner; it backs the memoization path.
func (r *ScanRepository) FindCompletedScan(ctx context.Context, ownerID, contentHash string) (*domain.Scan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, subject_id, owner_id, content_hash, status, overall_score, classification, scanned_at, created_at, updated_at
FROM scans
WHERE owner_id = $1 AND content_hash = $2 AND status = $3
ORDER BY created_at DESC
LIMIT 1
`, ownerID, contentHash, string(domain.ScanStatusCompleted))
	return scanRow(row)
}

func (r *ScanRepository) UpdateScanStatus(ctx context.Context, id string, status domain.ScanStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE scans
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update scan status: %w", err)
	}
	return requireRow(result, id)
}

func (r *ScanRepository) CompleteScan(ctx context.Context, id string, overallScore float64, classification domain.ScanClassification) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE scans
SET status = $2, overall_score = $3, classification = $4, updated_at = $5
WHERE id = $1
`, id, string(domain.ScanStatusCompleted), overallScore, string(classification), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete scan: %w", err)
	}
	return requireRow(result, id)
}

// FailScan marks the scan failed with the sentinel score and drops any
// matches persisted before the failure: a failed scan reports "could not
// determine", never partial findings.
func (r *ScanRepository) FailScan(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fail tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE scans
SET status = $2, overall_score = $3, classification = '', updated_at = $4
WHERE id = $1
`, id, string(domain.ScanStatusFailed), float64(domain.FailedScore), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("fail scan: %w", err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE scan_id = $1`, id); err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fail tx: %w", err)
	}
	return nil
}

func (r *ScanRepository) CreateMatch(ctx context.Context, match *domain.Match) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO matches (
	id, scan_id, sentence_text, position_start, position_end, matched_source, source_url, source_database,
	similarity_score, classification, confidence, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		match.ID, match.ScanID, match.SentenceText, match.PositionStart, match.PositionEnd,
		match.MatchedSource, match.SourceURL, match.SourceDatabase,
		match.SimilarityScore, string(match.Classification), match.Confidence, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *ScanRepository) ListMatches(ctx context.Context, scanID string) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, scan_id, sentence_text, position_start, position_end, matched_source, source_url, source_database,
	similarity_score, classification, confidence, created_at
FROM matches
WHERE scan_id = $1
ORDER BY position_start ASC
`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var m domain.Match
		var classification string
		if err := rows.Scan(
			&m.ID, &m.ScanID, &m.SentenceText, &m.PositionStart, &m.PositionEnd,
			&m.MatchedSource, &m.SourceURL, &m.SourceDatabase,
			&m.SimilarityScore, &classification, &m.Confidence, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		m.Classification = domain.MatchClassification(classification)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return out, nil
}

func scanRow(row *sql.Row) (*domain.Scan, error) {
	var s domain.Scan
	var status, classification string

	err := row.Scan(
		&s.ID, &s.SubjectID, &s.OwnerID, &s.ContentHash, &status,
		&s.OverallScore, &classification, &s.ScannedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}
	s.Status = domain.ScanStatus(status)
	s.Classification = domain.ScanClassification(classification)
	return &s, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %s: %w", id, domain.ErrScanNotFound)
	}
	return nil
}
