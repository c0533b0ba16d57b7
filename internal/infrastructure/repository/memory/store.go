// Package memory provides a process-local ResultStore used by the CLI and
// by tests. It honors the same not-found and immutability semantics as the
// postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paperlens/originality/internal/core/domain"
)

type Store struct {
	mu      sync.RWMutex
	scans   map[string]domain.Scan
	matches map[string][]domain.Match
}

func NewStore() *Store {
	return &Store{
		scans:   make(map[string]domain.Scan),
		matches: make(map[string][]domain.Match),
	}
}

func (s *Store) CreateScan(_ context.Context, scan *domain.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[scan.ID] = *scan
	return nil
}

func (s *Store) GetScanByID(_ context.Context, id string) (*domain.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, ok := s.scans[id]
	if !ok {
		return nil, domain.ErrScanNotFound
	}
	out := scan
	return &out, nil
}

func (s *Store) FindCompletedScan(_ context.Context, ownerID, contentHash string) (*domain.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *domain.Scan
	for id := range s.scans {
		scan := s.scans[id]
		if scan.OwnerID != ownerID || scan.ContentHash != contentHash || scan.Status != domain.ScanStatusCompleted {
			continue
		}
		if best == nil || scan.CreatedAt.After(best.CreatedAt) {
			copied := scan
			best = &copied
		}
	}
	if best == nil {
		return nil, domain.ErrScanNotFound
	}
	return best, nil
}

func (s *Store) UpdateScanStatus(_ context.Context, id string, status domain.ScanStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return domain.ErrScanNotFound
	}
	scan.Status = status
	scan.UpdatedAt = time.Now().UTC()
	s.scans[id] = scan
	return nil
}

func (s *Store) CompleteScan(_ context.Context, id string, overallScore float64, classification domain.ScanClassification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return domain.ErrScanNotFound
	}
	scan.Status = domain.ScanStatusCompleted
	scan.OverallScore = overallScore
	scan.Classification = classification
	scan.UpdatedAt = time.Now().UTC()
	s.scans[id] = scan
	return nil
}

func (s *Store) FailScan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scan, ok := s.scans[id]
	if !ok {
		return domain.ErrScanNotFound
	}
	scan.Status = domain.ScanStatusFailed
	scan.OverallScore = domain.FailedScore
	scan.Classification = ""
	scan.UpdatedAt = time.Now().UTC()
	s.scans[id] = scan
	delete(s.matches, id)
	return nil
}

func (s *Store) CreateMatch(_ context.Context, match *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.ScanID] = append(s.matches[match.ScanID], *match)
	return nil
}

func (s *Store) ListMatches(_ context.Context, scanID string) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]domain.Match, len(s.matches[scanID]))
	copy(matches, s.matches[scanID])
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PositionStart < matches[j].PositionStart
	})
	return matches, nil
}
