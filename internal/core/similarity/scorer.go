// Package similarity blends lexical, structural, set-overlap and semantic
// signals into one similarity value per compared unit. Semantic similarity
// is the strongest single indicator of paraphrase and carries the highest
// weight; the cheap lexical signal short-circuits near-verbatim copies
// before any embedding call is made.
package similarity

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/paperlens/originality/internal/core/normalize"
	"github.com/paperlens/originality/internal/core/ports"
)

// Weights for the ensemble combination. The rerank slot is reserved for a
// cross-encoder model and only participates when one is configured; weights
// renormalize over the available signals.
type Weights struct {
	Lexical    float64
	Semantic   float64
	Structural float64
	Jaccard    float64
	Rerank     float64
}

func DefaultWeights() Weights {
	return Weights{
		Lexical:    0.15,
		Semantic:   0.35,
		Structural: 0.10,
		Jaccard:    0.10,
		Rerank:     0.30,
	}
}

type Config struct {
	Weights Weights
	// ShortCircuit is the lexical similarity at or above which the ensemble
	// returns the lexical score directly. A near-verbatim match needs no
	// further confirmation.
	ShortCircuit float64
	NGramSize    int
}

const (
	defaultShortCircuit = 0.85
	defaultNGramSize    = 3
)

// Breakdown exposes the decomposed sub-scores alongside the combined value.
type Breakdown struct {
	Lexical    float64
	Semantic   float64
	Structural float64
	Jaccard    float64
	Rerank     float64

	SemanticAvailable bool
	RerankAvailable   bool
	ShortCircuited    bool

	Combined float64
}

type Scorer struct {
	embedder ports.EmbeddingProvider
	reranker ports.Reranker
	norm     *normalize.Normalizer
	cfg      Config
	logger   *slog.Logger
}

// New builds a scorer. embedder and reranker may be nil; their signals then
// drop out of the ensemble.
func New(norm *normalize.Normalizer, embedder ports.EmbeddingProvider, reranker ports.Reranker, cfg Config, logger *slog.Logger) *Scorer {
	if cfg.ShortCircuit <= 0 || cfg.ShortCircuit > 1 {
		cfg.ShortCircuit = defaultShortCircuit
	}
	if cfg.NGramSize <= 0 {
		cfg.NGramSize = defaultNGramSize
	}
	zero := Weights{}
	if cfg.Weights == zero {
		cfg.Weights = DefaultWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		embedder: embedder,
		reranker: reranker,
		norm:     norm,
		cfg:      cfg,
		logger:   logger,
	}
}

// Score compares a scanned unit against one candidate snippet and returns
// the ensemble breakdown. Combined is clamped to [0,1]; Match records
// report it as a 0-100 percentage.
func (s *Scorer) Score(ctx context.Context, unitText, candidateText string) Breakdown {
	normUnit := s.norm.Normalize(unitText)
	normCandidate := s.norm.Normalize(candidateText)

	var b Breakdown
	b.Lexical = DiceBigram(normUnit, normCandidate)
	if b.Lexical >= s.cfg.ShortCircuit {
		b.ShortCircuited = true
		b.Combined = b.Lexical
		return b
	}

	b.Structural = NGramJaccard(normUnit, normCandidate, s.cfg.NGramSize)
	b.Jaccard = WordJaccard(normUnit, normCandidate)
	b.Semantic, b.SemanticAvailable = s.semantic(ctx, unitText, candidateText)
	b.Rerank, b.RerankAvailable = s.rerank(ctx, unitText, candidateText)

	b.Combined = s.combine(b)
	return b
}

func (s *Scorer) semantic(ctx context.Context, unit, candidate string) (float64, bool) {
	if s.embedder == nil {
		return 0, false
	}
	unitVec, err := s.embedder.Embed(ctx, unit)
	if err != nil {
		s.logger.Warn("embedding failed, dropping semantic signal", "error", err)
		return 0, false
	}
	candidateVec, err := s.embedder.Embed(ctx, candidate)
	if err != nil {
		s.logger.Warn("embedding failed, dropping semantic signal", "error", err)
		return 0, false
	}
	if len(unitVec) != len(candidateVec) {
		// Dimension mismatch is a scoring error: the signal stays in the
		// ensemble with a zero contribution.
		s.logger.Warn("embedding dimension mismatch", "unit_dim", len(unitVec), "candidate_dim", len(candidateVec))
		return 0, true
	}
	return Cosine(unitVec, candidateVec), true
}

func (s *Scorer) rerank(ctx context.Context, unit, candidate string) (float64, bool) {
	if s.reranker == nil {
		return 0, false
	}
	scores, err := s.reranker.Rerank(ctx, unit, []string{candidate})
	if err != nil || len(scores) == 0 {
		if err != nil {
			s.logger.Warn("rerank failed, dropping signal", "error", err)
		}
		return 0, false
	}
	return clamp01(scores[0]), true
}

func (s *Scorer) combine(b Breakdown) float64 {
	w := s.cfg.Weights
	sum := b.Lexical*w.Lexical + b.Structural*w.Structural + b.Jaccard*w.Jaccard
	total := w.Lexical + w.Structural + w.Jaccard
	if b.SemanticAvailable {
		sum += b.Semantic * w.Semantic
		total += w.Semantic
	}
	if b.RerankAvailable {
		sum += b.Rerank * w.Rerank
		total += w.Rerank
	}
	if total <= 0 {
		return 0
	}
	return clamp01(sum / total)
}

// DiceBigram is the Sorensen-Dice coefficient over character bigrams.
func DiceBigram(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	aBigrams := bigramCounts(a)
	bBigrams := bigramCounts(b)
	if len(aBigrams) == 0 || len(bBigrams) == 0 {
		return 0
	}
	shared := 0
	totalA := 0
	for gram, count := range aBigrams {
		totalA += count
		if other, ok := bBigrams[gram]; ok {
			shared += min(count, other)
		}
	}
	totalB := 0
	for _, count := range bBigrams {
		totalB += count
	}
	return 2 * float64(shared) / float64(totalA+totalB)
}

func bigramCounts(s string) map[string]int {
	runes := []rune(s)
	out := make(map[string]int, len(runes))
	for i := 0; i+2 <= len(runes); i++ {
		out[string(runes[i:i+2])]++
	}
	return out
}

// WordJaccard is token-set overlap ignoring order: vocabulary reuse under
// heavy reordering still registers.
func WordJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	return jaccard(setA, setB)
}

// NGramJaccard is character n-gram set overlap, insensitive to
// tokenization.
func NGramJaccard(a, b string, n int) float64 {
	if n <= 0 {
		n = defaultNGramSize
	}
	return jaccard(ngramSet(a, n), ngramSet(b, n))
}

// Cosine is the normalized dot product of two vectors. A zero-norm vector
// or a length mismatch yields 0, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func ngramSet(s string, n int) map[string]struct{} {
	runes := []rune(s)
	out := make(map[string]struct{}, len(runes))
	for i := 0; i+n <= len(runes); i++ {
		out[string(runes[i:i+n])] = struct{}{}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
