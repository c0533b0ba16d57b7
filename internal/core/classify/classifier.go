// Package classify turns a raw similarity score plus linguistic heuristics
// into a fine-grained match classification and a confidence value.
package classify

import (
	"regexp"
	"strings"

	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/normalize"
)

// Config carries the threshold table. Authoritative sources use a higher
// bar: false positives against academic corpora cost more user trust than
// ones against the general web.
type Config struct {
	MinWords          int
	AuthoritativeHigh float64
	AuthoritativeLow  float64
	WebHigh           float64
	WebLow            float64
	// HeuristicBoost is added to the raw score once per matched linguistic
	// heuristic before threshold comparison.
	HeuristicBoost float64
}

func DefaultConfig() Config {
	return Config{
		MinWords:          8,
		AuthoritativeHigh: 75,
		AuthoritativeLow:  40,
		WebHigh:           65,
		WebLow:            28,
		HeuristicBoost:    2.0,
	}
}

// Result is a label plus the weight the classifier places on it, 0-100.
type Result struct {
	Classification domain.MatchClassification
	Confidence     float64
}

type Classifier struct {
	cfg  Config
	norm *normalize.Normalizer
}

func New(norm *normalize.Normalizer, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.MinWords <= 0 {
		cfg.MinWords = def.MinWords
	}
	if cfg.AuthoritativeHigh <= 0 {
		cfg.AuthoritativeHigh = def.AuthoritativeHigh
	}
	if cfg.AuthoritativeLow <= 0 {
		cfg.AuthoritativeLow = def.AuthoritativeLow
	}
	if cfg.WebHigh <= 0 {
		cfg.WebHigh = def.WebHigh
	}
	if cfg.WebLow <= 0 {
		cfg.WebLow = def.WebLow
	}
	if cfg.HeuristicBoost <= 0 {
		cfg.HeuristicBoost = def.HeuristicBoost
	}
	return &Classifier{cfg: cfg, norm: norm}
}

var (
	passiveVoiceRe = regexp.MustCompile(`(?i)\b(is|are|was|were|been|being|be)\s+\w+(ed|en)\b`)
	connectorRe    = regexp.MustCompile(`(?i)\b(furthermore|moreover|consequently|nevertheless|nonetheless|therefore|however|thus|hence|accordingly)\b`)
	registerRe     = regexp.MustCompile(`(?i)\b(hypothesis|methodology|empirical|literature|findings|analysis|significant|correlation|phenomenon|framework)\b`)
	citationRe     = regexp.MustCompile(`\(\s*[A-Z][\w'-]+(?:\s+(?:et\s+al\.?|and|&)\s*[\w'-]*)?\s*,?\s*\d{4}[a-z]?\s*\)|\[\d+\]`)
)

// Classify labels one scored sentence. Similarity in short spans is not
// meaningful evidence, so short sentences are common_phrase regardless of
// score, and properly quoted sentences never bear risk.
func (c *Classifier) Classify(similarityPct float64, sentence string, kind domain.SourceKind) Result {
	if wordCount(sentence) < c.cfg.MinWords || c.norm.IsCommonAcademicPhrase(sentence) {
		return Result{Classification: domain.MatchCommonPhrase, Confidence: 95}
	}
	if c.norm.IsProperlyQuoted(sentence) {
		return Result{Classification: domain.MatchQuotedCorrectly, Confidence: 90}
	}

	adjusted := similarityPct + c.heuristicAdjustment(sentence)
	high, low := c.cfg.WebHigh, c.cfg.WebLow
	if kind.Authoritative() {
		high, low = c.cfg.AuthoritativeHigh, c.cfg.AuthoritativeLow
	}

	switch {
	case adjusted > high:
		if HasCitationPattern(sentence) {
			// Proper citation is the remedy for legitimate similarity, not
			// a rewrite.
			return Result{Classification: domain.MatchSafe, Confidence: 85}
		}
		return Result{Classification: domain.MatchNeedsCitation, Confidence: clampPct(adjusted)}
	case adjusted >= low:
		return Result{Classification: domain.MatchCloseParaphrase, Confidence: clampPct(adjusted)}
	default:
		return Result{Classification: domain.MatchSafe, Confidence: clampPct(100 - adjusted)}
	}
}

// heuristicAdjustment rewards scholarly register: its presence makes a match
// more likely to be genuine reuse than coincidence.
func (c *Classifier) heuristicAdjustment(sentence string) float64 {
	boost := 0.0
	if passiveVoiceRe.MatchString(sentence) {
		boost += c.cfg.HeuristicBoost
	}
	if connectorRe.MatchString(sentence) {
		boost += c.cfg.HeuristicBoost
	}
	if registerRe.MatchString(sentence) {
		boost += c.cfg.HeuristicBoost
	}
	return boost
}

// HasCitationPattern detects (Author, Year) and [n] style citations.
func HasCitationPattern(sentence string) bool {
	return citationRe.MatchString(sentence)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
