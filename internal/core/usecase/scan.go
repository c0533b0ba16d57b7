package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paperlens/originality/internal/core/classify"
	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/normalize"
	"github.com/paperlens/originality/internal/core/ports"
)

// ScanConfig tunes orchestration. Zero values fall back to defaults.
type ScanConfig struct {
	// RetentionFloor is the similarity percentage below which a scored
	// sentence produces no Match record.
	RetentionFloor float64
	// SentenceTimeout bounds each gateway round-trip; a timeout counts as
	// "no candidates" for that sentence, never a scan failure.
	SentenceTimeout time.Duration
	// LockTTL bounds how long the (owner, hash) processing lock may be held.
	LockTTL time.Duration
	// DuplicateWait is how long a concurrent duplicate submission waits for
	// the first scan to complete before giving up.
	DuplicateWait time.Duration
	// DuplicatePoll is the poll interval while waiting.
	DuplicatePoll time.Duration
}

func (c ScanConfig) withDefaults() ScanConfig {
	if c.RetentionFloor <= 0 {
		c.RetentionFloor = 15
	}
	if c.SentenceTimeout <= 0 {
		c.SentenceTimeout = 10 * time.Second
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 2 * time.Minute
	}
	if c.DuplicateWait <= 0 {
		c.DuplicateWait = 30 * time.Second
	}
	if c.DuplicatePoll <= 0 {
		c.DuplicatePoll = 200 * time.Millisecond
	}
	return c
}

// ScanUseCase coordinates the originality pipeline across one document:
// content-hash memoization, sentence dispatch, scoring, classification and
// scan lifecycle (pending -> processing -> completed|failed; terminal
// states are never resumed, a retry is a new scan).
type ScanUseCase struct {
	store      ports.ResultStore
	gateway    ports.SourceGateway
	strategy   ScoringStrategy
	classifier *classify.Classifier
	norm       *normalize.Normalizer
	cache      ports.Cache
	cfg        ScanConfig
	logger     *slog.Logger
}

func NewScanUseCase(
	store ports.ResultStore,
	gateway ports.SourceGateway,
	strategy ScoringStrategy,
	classifier *classify.Classifier,
	norm *normalize.Normalizer,
	cache ports.Cache,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanUseCase{
		store:      store,
		gateway:    gateway,
		strategy:   strategy,
		classifier: classifier,
		norm:       norm,
		cache:      cache,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// StartScan runs the pipeline over one document version. Identical
// normalized content for the same owner returns the earlier completed scan
// unchanged, and at most one scan for a given (owner, hash) is ever in
// processing at a time.
func (uc *ScanUseCase) StartScan(ctx context.Context, subjectID, ownerID, content string) (*domain.Scan, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "start scan", errors.New("empty content"))
	}

	body, _ := uc.norm.ExcludeBibliography(content)
	normalized := uc.norm.Normalize(body)
	contentHash := hashContent(normalized)

	if prior, err := uc.findCompleted(ctx, ownerID, contentHash); err != nil {
		return nil, err
	} else if prior != nil {
		return prior, nil
	}

	release, acquired, err := uc.acquireLock(ctx, ownerID, contentHash)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return uc.awaitDuplicate(ctx, ownerID, contentHash)
	}
	defer release()

	// The winner of a prior race may have completed between the lookup and
	// the lock acquisition.
	if prior, err := uc.findCompleted(ctx, ownerID, contentHash); err != nil {
		return nil, err
	} else if prior != nil {
		return prior, nil
	}

	scan, err := uc.createScan(ctx, subjectID, ownerID, contentHash)
	if err != nil {
		return nil, err
	}

	if err := uc.store.UpdateScanStatus(ctx, scan.ID, domain.ScanStatusProcessing); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}
	scan.Status = domain.ScanStatusProcessing

	matches, overall, err := uc.processSentences(ctx, scan, body)
	if err != nil {
		if failErr := uc.markFailed(ctx, scan); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return scan, err
	}

	classification := domain.ClassifyOverall(overall)
	if err := uc.store.CompleteScan(ctx, scan.ID, overall, classification); err != nil {
		return nil, fmt.Errorf("complete scan: %w", err)
	}

	scan.Status = domain.ScanStatusCompleted
	scan.OverallScore = overall
	scan.Classification = classification
	scan.Matches = matches
	return scan, nil
}

func (uc *ScanUseCase) GetScan(ctx context.Context, id string) (*domain.Scan, error) {
	scan, err := uc.store.GetScanByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch scan by id: %w", err)
	}
	matches, err := uc.store.ListMatches(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list scan matches: %w", err)
	}
	scan.Matches = matches
	return scan, nil
}

// processSentences walks the segmented body sequentially. Sequential
// dispatch keeps result ordering deterministic and stays inside external
// rate limits; pacing itself lives in the gateway's limiter. A provider
// fault for one sentence never aborts its siblings.
func (uc *ScanUseCase) processSentences(ctx context.Context, scan *domain.Scan, body string) ([]domain.Match, float64, error) {
	sentences := uc.norm.SegmentSentences(body)

	totalScanned := 0
	for _, s := range sentences {
		totalScanned += s.End - s.Start
	}

	var matches []domain.Match
	var weighted float64
	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, 0, domain.WrapError(domain.ErrUnrecoverable, "scan deadline exceeded", err)
		}
		if uc.skipSentence(sentence.Text) {
			continue
		}

		match, ok, err := uc.scoreSentence(ctx, scan, sentence)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			continue
		}

		matches = append(matches, match)
		weighted += match.SimilarityScore * float64(match.PositionEnd-match.PositionStart)
	}

	if totalScanned == 0 {
		return matches, 0, nil
	}
	return matches, weighted / float64(totalScanned), nil
}

// skipSentence applies the per-sentence rules before any external call:
// quoted and boilerplate sentences carry no penalty, so searching them only
// burns gateway quota. Fragments below the minimum length never reach here;
// segmentation drops them.
func (uc *ScanUseCase) skipSentence(text string) bool {
	return uc.norm.IsProperlyQuoted(text) || uc.norm.IsCommonAcademicPhrase(text)
}

func (uc *ScanUseCase) scoreSentence(ctx context.Context, scan *domain.Scan, sentence normalize.Sentence) (domain.Match, bool, error) {
	searchCtx, cancel := context.WithTimeout(ctx, uc.cfg.SentenceTimeout)
	candidates := uc.gateway.Search(searchCtx, sentence.Text)
	cancel()
	if len(candidates) == 0 {
		return domain.Match{}, false, nil
	}

	best, breakdown, ok := uc.strategy.Evaluate(ctx, sentence.Text, candidates)
	if !ok {
		return domain.Match{}, false, nil
	}

	scorePct := breakdown.Combined * 100
	if scorePct < uc.cfg.RetentionFloor {
		return domain.Match{}, false, nil
	}

	verdict := uc.classifier.Classify(scorePct, sentence.Text, best.Kind)
	match := domain.Match{
		ID:              uuid.NewString(),
		ScanID:          scan.ID,
		SentenceText:    sentence.Text,
		PositionStart:   sentence.Start,
		PositionEnd:     sentence.End,
		MatchedSource:   best.Snippet,
		SourceURL:       best.SourceURL,
		SourceDatabase:  best.SourceName,
		SimilarityScore: scorePct,
		Classification:  verdict.Classification,
		Confidence:      verdict.Confidence,
		CreatedAt:       time.Now().UTC(),
	}
	if err := uc.store.CreateMatch(ctx, &match); err != nil {
		return domain.Match{}, false, domain.WrapError(domain.ErrUnrecoverable, "persist match", err)
	}
	return match, true, nil
}

func (uc *ScanUseCase) createScan(ctx context.Context, subjectID, ownerID, contentHash string) (*domain.Scan, error) {
	now := time.Now().UTC()
	scan := &domain.Scan{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		OwnerID:     ownerID,
		ContentHash: contentHash,
		Status:      domain.ScanStatusPending,
		ScannedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.store.CreateScan(ctx, scan); err != nil {
		return nil, fmt.Errorf("create scan record: %w", err)
	}
	return scan, nil
}

func (uc *ScanUseCase) markFailed(ctx context.Context, scan *domain.Scan) error {
	if err := uc.store.FailScan(ctx, scan.ID); err != nil {
		return err
	}
	scan.Status = domain.ScanStatusFailed
	scan.OverallScore = domain.FailedScore
	scan.Matches = nil
	return nil
}

func (uc *ScanUseCase) findCompleted(ctx context.Context, ownerID, contentHash string) (*domain.Scan, error) {
	scan, err := uc.store.FindCompletedScan(ctx, ownerID, contentHash)
	if err != nil {
		if domain.IsKind(err, domain.ErrScanNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup completed scan: %w", err)
	}
	matches, err := uc.store.ListMatches(ctx, scan.ID)
	if err != nil {
		return nil, fmt.Errorf("list scan matches: %w", err)
	}
	scan.Matches = matches
	return scan, nil
}

func (uc *ScanUseCase) acquireLock(ctx context.Context, ownerID, contentHash string) (func(), bool, error) {
	key := lockKey(ownerID, contentHash)
	acquired, err := uc.cache.SetNX(ctx, key, "1", uc.cfg.LockTTL)
	if err != nil {
		return nil, false, domain.WrapError(domain.ErrTemporary, "acquire scan lock", err)
	}
	if !acquired {
		return nil, false, nil
	}
	release := func() {
		if err := uc.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
			uc.logger.Warn("release scan lock failed", "key", key, "error", err)
		}
	}
	return release, true, nil
}

// awaitDuplicate handles the losing side of a concurrent duplicate
// submission: wait for the winner's completed scan instead of burning
// gateway quota on identical content.
func (uc *ScanUseCase) awaitDuplicate(ctx context.Context, ownerID, contentHash string) (*domain.Scan, error) {
	deadline := time.NewTimer(uc.cfg.DuplicateWait)
	defer deadline.Stop()
	ticker := time.NewTicker(uc.cfg.DuplicatePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, domain.WrapError(domain.ErrTemporary, "await duplicate scan", ctx.Err())
		case <-deadline.C:
			return nil, domain.WrapError(domain.ErrTemporary, "await duplicate scan", errors.New("timed out waiting for concurrent scan"))
		case <-ticker.C:
			scan, err := uc.findCompleted(ctx, ownerID, contentHash)
			if err != nil {
				return nil, err
			}
			if scan != nil {
				return scan, nil
			}
		}
	}
}

func hashContent(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func lockKey(ownerID, contentHash string) string {
	return "scan:lock:" + ownerID + ":" + contentHash
}
