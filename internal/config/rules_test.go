package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if rules.HasWeights() {
		t.Fatalf("expected no weight overrides")
	}
	if len(rules.StopWords) != 0 {
		t.Fatalf("expected no stop words, got %v", rules.StopWords)
	}
}

func TestLoadRulesParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte(`
stop_words: [the, a, an]
min_sentence_chars: 30
weights:
  lexical: 0.2
  semantic: 0.4
thresholds:
  authoritative_high: 80
  web_low: 25
min_words: 6
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules.StopWords) != 3 {
		t.Fatalf("expected 3 stop words, got %v", rules.StopWords)
	}
	if rules.MinSentenceChars != 30 {
		t.Fatalf("expected min sentence chars 30, got %d", rules.MinSentenceChars)
	}
	if !rules.HasWeights() || rules.Weights.Semantic != 0.4 {
		t.Fatalf("expected weight overrides, got %+v", rules.Weights)
	}
	if rules.Thresholds.AuthoritativeHigh != 80 || rules.Thresholds.WebLow != 25 {
		t.Fatalf("unexpected thresholds: %+v", rules.Thresholds)
	}
	if rules.MinWords != 6 {
		t.Fatalf("expected min words 6, got %d", rules.MinWords)
	}
}

func TestLoadRulesRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("stop_words: [unclosed"), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
