package similarity

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/paperlens/originality/internal/core/normalize"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

type fakeReranker struct {
	score float64
	err   error
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, documents []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(documents))
	for i := range out {
		out[i] = f.score
	}
	return out, nil
}

func newTestNormalizer() *normalize.Normalizer {
	return normalize.New(normalize.Rules{})
}

func TestScoreShortCircuitsOnNearVerbatim(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("must not be called")}
	scorer := New(newTestNormalizer(), embedder, nil, Config{}, nil)

	text := "The industrial revolution transformed European labor markets."
	b := scorer.Score(context.Background(), text, text)
	if !b.ShortCircuited {
		t.Fatalf("expected short circuit for identical text: %+v", b)
	}
	if b.Combined != b.Lexical {
		t.Fatalf("short circuit must return the lexical score exactly, got %v vs %v", b.Combined, b.Lexical)
	}
	if b.SemanticAvailable {
		t.Fatalf("semantic signal must not run after short circuit")
	}
}

func TestScoreRenormalizesWithoutSemanticSignals(t *testing.T) {
	scorer := New(newTestNormalizer(), nil, nil, Config{}, nil)

	b := scorer.Score(context.Background(),
		"completely different topic about marine biology",
		"unrelated discussion of medieval architecture")
	if b.SemanticAvailable || b.RerankAvailable {
		t.Fatalf("no backends configured, got %+v", b)
	}

	w := DefaultWeights()
	want := (b.Lexical*w.Lexical + b.Structural*w.Structural + b.Jaccard*w.Jaccard) /
		(w.Lexical + w.Structural + w.Jaccard)
	if math.Abs(b.Combined-want) > 1e-9 {
		t.Fatalf("Combined = %v, want renormalized %v", b.Combined, want)
	}
}

func TestScoreEmbedderFailureDropsSemanticSignal(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	scorer := New(newTestNormalizer(), embedder, nil, Config{}, nil)

	b := scorer.Score(context.Background(),
		"original sentence about climate policy",
		"paraphrased take on environmental regulation")
	if b.SemanticAvailable {
		t.Fatalf("failed embedding must drop the signal, got %+v", b)
	}
}

func TestScoreDimensionMismatchScoresZeroButStaysInEnsemble(t *testing.T) {
	unit := "original sentence about climate policy"
	candidate := "paraphrased take on environmental regulation"
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		unit:      {1, 0, 0},
		candidate: {1, 0},
	}}
	scorer := New(newTestNormalizer(), embedder, nil, Config{}, nil)

	b := scorer.Score(context.Background(), unit, candidate)
	if !b.SemanticAvailable {
		t.Fatalf("mismatch keeps the signal available, got %+v", b)
	}
	if b.Semantic != 0 {
		t.Fatalf("mismatch scores zero, got %v", b.Semantic)
	}
}

func TestScoreIncludesRerankWhenConfigured(t *testing.T) {
	unit := "students increasingly rely on generated text"
	candidate := "reliance on machine generated prose is growing among students"
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		unit:      {1, 0},
		candidate: {1, 0},
	}}
	scorer := New(newTestNormalizer(), embedder, &fakeReranker{score: 0.9}, Config{}, nil)

	b := scorer.Score(context.Background(), unit, candidate)
	if !b.RerankAvailable || b.Rerank != 0.9 {
		t.Fatalf("expected rerank signal 0.9, got %+v", b)
	}

	w := DefaultWeights()
	sum := b.Lexical*w.Lexical + b.Structural*w.Structural + b.Jaccard*w.Jaccard +
		b.Semantic*w.Semantic + b.Rerank*w.Rerank
	total := w.Lexical + w.Structural + w.Jaccard + w.Semantic + w.Rerank
	if math.Abs(b.Combined-sum/total) > 1e-9 {
		t.Fatalf("Combined = %v, want %v", b.Combined, sum/total)
	}
}

func TestDiceBigram(t *testing.T) {
	if got := DiceBigram("night", "night"); got != 1 {
		t.Fatalf("identical strings = %v, want 1", got)
	}
	if got := DiceBigram("night", "nacht"); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("night/nacht = %v, want 0.25", got)
	}
	if got := DiceBigram("", ""); got != 0 {
		t.Fatalf("empty strings = %v, want 0", got)
	}
}

func TestWordJaccard(t *testing.T) {
	if got := WordJaccard("alpha beta gamma", "gamma beta alpha"); got != 1 {
		t.Fatalf("reordered tokens = %v, want 1", got)
	}
	if got := WordJaccard("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint tokens = %v, want 0", got)
	}
}

func TestCosineEdgeCases(t *testing.T) {
	if got := Cosine([]float32{1, 2, 3}, []float32{1, 2, 3}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self cosine = %v, want 1", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 2}); got != 0 {
		t.Fatalf("zero vector cosine = %v, want 0", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 2}); got != 0 {
		t.Fatalf("length mismatch cosine = %v, want 0", got)
	}
}
