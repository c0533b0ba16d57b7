// Package gateway fans scanned sentences out to the configured reference
// providers. Provider faults never surface as errors: a rate-limited,
// misconfigured or timed-out provider simply contributes no candidates.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/ports"
	"github.com/paperlens/originality/internal/infrastructure/resilience"
)

type Config struct {
	// CallInterval spaces consecutive provider calls through a token
	// bucket; this is deliberate throttling against third-party rate
	// limits, not error recovery.
	CallInterval time.Duration
	// MaxSentenceRunes truncates outbound queries; providers accept at most
	// a few hundred characters.
	MaxSentenceRunes int
}

const (
	defaultCallInterval     = 120 * time.Millisecond
	defaultMaxSentenceRunes = 300
)

// Observer receives one event per provider call for metrics.
type Observer func(provider, outcome string)

type Multi struct {
	providers []ports.SourceProvider
	limiter   *rate.Limiter
	exec      *resilience.Executor
	logger    *slog.Logger
	observe   Observer
	maxRunes  int

	mu       sync.Mutex
	disabled map[string]bool
}

func NewMulti(providers []ports.SourceProvider, cfg Config, logger *slog.Logger, observe Observer) *Multi {
	interval := cfg.CallInterval
	if interval <= 0 {
		interval = defaultCallInterval
	}
	maxRunes := cfg.MaxSentenceRunes
	if maxRunes <= 0 {
		maxRunes = defaultMaxSentenceRunes
	}
	if logger == nil {
		logger = slog.Default()
	}
	if observe == nil {
		observe = func(string, string) {}
	}
	return &Multi{
		providers: providers,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		exec:      resilience.NewExecutor(resilience.DefaultConfig(), classifyProviderError),
		logger:    logger,
		observe:   observe,
		maxRunes:  maxRunes,
		disabled:  make(map[string]bool),
	}
}

// Search queries every enabled provider for one sentence. A provider that
// reports missing configuration is skipped for the remainder of the
// process; transient faults are logged and contribute nothing.
func (g *Multi) Search(ctx context.Context, sentence string) []domain.SourceCandidate {
	query := truncateRunes(sentence, g.maxRunes)
	var out []domain.SourceCandidate

	for _, provider := range g.providers {
		name := provider.Name()
		if g.isDisabled(name) {
			continue
		}
		if err := g.limiter.Wait(ctx); err != nil {
			g.observe(name, "timeout")
			return out
		}

		var candidates []domain.SourceCandidate
		err := g.exec.Execute(ctx, "gateway."+name, func(callCtx context.Context) error {
			found, searchErr := provider.Search(callCtx, query)
			if searchErr != nil {
				return searchErr
			}
			candidates = found
			return nil
		})
		if err != nil {
			g.handleProviderError(name, err)
			continue
		}

		g.observe(name, "ok")
		out = append(out, candidates...)
	}
	return out
}

func (g *Multi) handleProviderError(name string, err error) {
	switch {
	case domain.IsKind(err, domain.ErrNotConfigured):
		g.logger.Warn("provider unavailable, disabling for this process", "provider", name, "error", err)
		g.setDisabled(name)
		g.observe(name, "not_configured")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		g.logger.Warn("provider call timed out", "provider", name)
		g.observe(name, "timeout")
	default:
		g.logger.Warn("provider call failed", "provider", name, "error", err)
		g.observe(name, "error")
	}
}

func (g *Multi) isDisabled(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabled[name]
}

func (g *Multi) setDisabled(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disabled[name] = true
}

func classifyProviderError(err error) resilience.Verdict {
	switch {
	case err == nil:
		return resilience.Verdict{}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return resilience.Verdict{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrNotConfigured):
		return resilience.Verdict{Retryable: false, RecordFailure: false}
	case domain.IsKind(err, domain.ErrTemporary) || resilience.IsCircuitOpen(err):
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	default:
		return resilience.Verdict{Retryable: false, RecordFailure: true}
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
