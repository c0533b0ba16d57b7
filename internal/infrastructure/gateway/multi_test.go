package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/ports"
)

type scriptedProvider struct {
	mu    sync.Mutex
	name  string
	kind  domain.SourceKind
	out   []domain.SourceCandidate
	err   error
	calls int
	seen  []string
}

func (p *scriptedProvider) Name() string            { return p.name }
func (p *scriptedProvider) Kind() domain.SourceKind { return p.kind }

func (p *scriptedProvider) Search(_ context.Context, sentence string) ([]domain.SourceCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.seen = append(p.seen, sentence)
	if p.err != nil {
		return nil, p.err
	}
	return p.out, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func fastConfig() Config {
	return Config{CallInterval: time.Microsecond}
}

func TestSearchMergesCandidatesAcrossProviders(t *testing.T) {
	academic := &scriptedProvider{name: "crossref", kind: domain.SourceAcademic, out: []domain.SourceCandidate{
		{Snippet: "academic snippet", SourceName: "crossref", Kind: domain.SourceAcademic},
	}}
	web := &scriptedProvider{name: "serper", kind: domain.SourceWeb, out: []domain.SourceCandidate{
		{Snippet: "web snippet", SourceName: "serper", Kind: domain.SourceWeb},
	}}
	g := NewMulti([]ports.SourceProvider{academic, web}, fastConfig(), nil, nil)

	candidates := g.Search(context.Background(), "a sentence to check")
	if len(candidates) != 2 {
		t.Fatalf("expected merged candidates, got %+v", candidates)
	}
}

func TestSearchProviderFaultDoesNotPoisonSiblings(t *testing.T) {
	broken := &scriptedProvider{name: "crossref", kind: domain.SourceAcademic, err: errors.New("upstream exploded")}
	healthy := &scriptedProvider{name: "serper", kind: domain.SourceWeb, out: []domain.SourceCandidate{
		{Snippet: "still here", SourceName: "serper", Kind: domain.SourceWeb},
	}}
	var outcomes []string
	observe := func(provider, outcome string) {
		outcomes = append(outcomes, provider+":"+outcome)
	}
	g := NewMulti([]ports.SourceProvider{broken, healthy}, fastConfig(), nil, observe)

	candidates := g.Search(context.Background(), "a sentence to check")
	if len(candidates) != 1 || candidates[0].Snippet != "still here" {
		t.Fatalf("healthy provider must still contribute, got %+v", candidates)
	}
	joined := strings.Join(outcomes, ",")
	if !strings.Contains(joined, "crossref:error") || !strings.Contains(joined, "serper:ok") {
		t.Fatalf("unexpected outcomes: %v", outcomes)
	}
}

func TestSearchDisablesUnconfiguredProviderForProcessLifetime(t *testing.T) {
	unconfigured := &scriptedProvider{
		name: "serper", kind: domain.SourceWeb,
		err: domain.WrapError(domain.ErrNotConfigured, "serper search", errors.New("api key is empty")),
	}
	g := NewMulti([]ports.SourceProvider{unconfigured}, fastConfig(), nil, nil)

	g.Search(context.Background(), "first sentence to check")
	g.Search(context.Background(), "second sentence to check")

	if unconfigured.callCount() != 1 {
		t.Fatalf("unconfigured provider must be called once then disabled, got %d calls", unconfigured.callCount())
	}
}

func TestSearchTruncatesLongSentences(t *testing.T) {
	p := &scriptedProvider{name: "crossref", kind: domain.SourceAcademic}
	g := NewMulti([]ports.SourceProvider{p}, Config{CallInterval: time.Microsecond, MaxSentenceRunes: 10}, nil, nil)

	g.Search(context.Background(), "this sentence is far longer than ten runes")
	if got := p.seen[0]; len([]rune(got)) != 10 {
		t.Fatalf("expected 10-rune query, got %q", got)
	}
}

func TestSearchAllProvidersEmptyYieldsNoCandidates(t *testing.T) {
	p := &scriptedProvider{name: "crossref", kind: domain.SourceAcademic}
	g := NewMulti([]ports.SourceProvider{p}, fastConfig(), nil, nil)

	if candidates := g.Search(context.Background(), "a sentence to check"); len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", candidates)
	}
}
