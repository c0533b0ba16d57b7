// Package fingerprint implements rolling-window hashing of normalized text
// for draft-vs-draft self-comparison. Fingerprints are exact-match biased:
// tolerant of reordering and partial reuse, blind to paraphrase. They are
// never used against unbounded external corpora, where fingerprint storage
// would be unbounded too.
package fingerprint

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultWindowSize is the number of consecutive words per fingerprint.
const DefaultWindowSize = 8

// Index maps each window hash to the starting word positions where it
// occurs. Total position count is max(0, wordCount-windowSize+1).
type Index map[uint64][]int

// New fingerprints every contiguous windowSize-word window of text.
func New(text string, windowSize int) Index {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	words := strings.Fields(text)
	idx := make(Index)
	for i := 0; i+windowSize <= len(words); i++ {
		h := hashWindow(words[i : i+windowSize])
		idx[h] = append(idx[h], i)
	}
	return idx
}

func hashWindow(words []string) uint64 {
	d := xxhash.New()
	for i, w := range words {
		if i > 0 {
			_, _ = d.WriteString(" ")
		}
		_, _ = d.WriteString(w)
	}
	return d.Sum64()
}

// Compare returns the percentage of a's distinct fingerprints also present
// in b. Order-independent; a document against itself is always 100.
func Compare(a, b Index) float64 {
	if len(a) == 0 {
		return 0
	}
	shared := 0
	for h := range a {
		if _, ok := b[h]; ok {
			shared++
		}
	}
	return 100 * float64(shared) / float64(len(a))
}

// Coverage returns the percentage of textA's words covered by at least one
// window whose hash also occurs in textB. This expresses "how much of the
// new draft is verbatim-reused from the old draft", which is not the same
// thing as fingerprint-set overlap.
func Coverage(textA, textB string, windowSize int) float64 {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	wordsA := strings.Fields(textA)
	if len(wordsA) == 0 {
		return 0
	}
	idxB := New(textB, windowSize)
	covered := make([]bool, len(wordsA))
	for i := 0; i+windowSize <= len(wordsA); i++ {
		h := hashWindow(wordsA[i : i+windowSize])
		if _, ok := idxB[h]; !ok {
			continue
		}
		for j := i; j < i+windowSize; j++ {
			covered[j] = true
		}
	}
	count := 0
	for _, c := range covered {
		if c {
			count++
		}
	}
	return 100 * float64(count) / float64(len(wordsA))
}
