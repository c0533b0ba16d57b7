package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScanRules is the optional tuning file referenced by SCAN_RULES_PATH.
// Institutions override word lists and thresholds without a rebuild; any
// field left empty keeps the built-in default.
type ScanRules struct {
	StopWords        []string `yaml:"stop_words"`
	AcademicPhrases  []string `yaml:"academic_phrases"`
	MinSentenceChars int      `yaml:"min_sentence_chars"`

	Weights struct {
		Lexical    float64 `yaml:"lexical"`
		Semantic   float64 `yaml:"semantic"`
		Structural float64 `yaml:"structural"`
		Jaccard    float64 `yaml:"jaccard"`
		Rerank     float64 `yaml:"rerank"`
	} `yaml:"weights"`
	ShortCircuit float64 `yaml:"short_circuit"`

	Thresholds struct {
		AuthoritativeHigh float64 `yaml:"authoritative_high"`
		AuthoritativeLow  float64 `yaml:"authoritative_low"`
		WebHigh           float64 `yaml:"web_high"`
		WebLow            float64 `yaml:"web_low"`
	} `yaml:"thresholds"`
	MinWords int `yaml:"min_words"`
}

func LoadRules(path string) (*ScanRules, error) {
	if path == "" {
		return &ScanRules{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan rules: %w", err)
	}

	var rules ScanRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse scan rules: %w", err)
	}
	return &rules, nil
}

// HasWeights reports whether the file overrides any signal weight; the
// bootstrap treats the weight block as all-or-nothing.
func (r *ScanRules) HasWeights() bool {
	w := r.Weights
	return w.Lexical > 0 || w.Semantic > 0 || w.Structural > 0 || w.Jaccard > 0 || w.Rerank > 0
}
