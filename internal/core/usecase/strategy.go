package usecase

import (
	"context"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/similarity"
)

// ScoringStrategy selects and scores the best candidate for one sentence.
// One orchestrator serves both scan modes; the strategy is the only thing
// that varies between them.
type ScoringStrategy interface {
	Name() string
	Evaluate(ctx context.Context, sentence string, candidates []domain.SourceCandidate) (domain.SourceCandidate, similarity.Breakdown, bool)
}

// EnsembleStrategy runs the full multi-signal scorer over every candidate
// and keeps the highest combined score.
type EnsembleStrategy struct {
	scorer *similarity.Scorer
}

func NewEnsembleStrategy(scorer *similarity.Scorer) *EnsembleStrategy {
	return &EnsembleStrategy{scorer: scorer}
}

func (s *EnsembleStrategy) Name() string { return "ensemble" }

func (s *EnsembleStrategy) Evaluate(ctx context.Context, sentence string, candidates []domain.SourceCandidate) (domain.SourceCandidate, similarity.Breakdown, bool) {
	var best domain.SourceCandidate
	var bestBreakdown similarity.Breakdown
	found := false
	for _, candidate := range candidates {
		breakdown := s.scorer.Score(ctx, sentence, candidate.Snippet)
		if !found || breakdown.Combined > bestBreakdown.Combined {
			best = candidate
			bestBreakdown = breakdown
			found = true
		}
	}
	return best, bestBreakdown, found
}

// SingleProviderStrategy is the stricter mode: it considers only one named
// provider and scores on the lexical and structural signals alone, so only
// verbatim and lightly edited reuse registers.
type SingleProviderStrategy struct {
	scorer   *similarity.Scorer
	provider string
}

// NewSingleProviderStrategy expects a scorer built without an embedder or
// reranker; the remaining signals renormalize among themselves.
func NewSingleProviderStrategy(scorer *similarity.Scorer, provider string) *SingleProviderStrategy {
	return &SingleProviderStrategy{scorer: scorer, provider: provider}
}

func (s *SingleProviderStrategy) Name() string { return "single_provider" }

func (s *SingleProviderStrategy) Evaluate(ctx context.Context, sentence string, candidates []domain.SourceCandidate) (domain.SourceCandidate, similarity.Breakdown, bool) {
	var best domain.SourceCandidate
	var bestBreakdown similarity.Breakdown
	found := false
	for _, candidate := range candidates {
		if s.provider != "" && candidate.SourceName != s.provider {
			continue
		}
		breakdown := s.scorer.Score(ctx, sentence, candidate.Snippet)
		if !found || breakdown.Combined > bestBreakdown.Combined {
			best = candidate
			bestBreakdown = breakdown
			found = true
		}
	}
	return best, bestBreakdown, found
}
