package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Rules carries the tunable parts of text normalization. Zero values fall
// back to the built-in defaults.
type Rules struct {
	StopWords         []string
	AcademicPhrases   []string
	MinSentenceChars  int
	BibliographyHeads []string
}

// Sentence is one retained fragment with rune offsets into the segmented
// text. Offsets point at the trimmed fragment, so they stay valid for
// highlight rendering.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Span marks an excluded region in rune offsets.
type Span struct {
	Start int
	End   int
}

type Normalizer struct {
	stopWords        map[string]struct{}
	phrases          map[string]struct{}
	minSentenceChars int
	bibliographyRe   *regexp.Regexp
}

const defaultMinSentenceChars = 20

var defaultBibliographyHeads = []string{
	"references", "bibliography", "works cited", "literature cited", "reference list",
}

func New(rules Rules) *Normalizer {
	stop := rules.StopWords
	if len(stop) == 0 {
		stop = defaultStopWords
	}
	phrases := rules.AcademicPhrases
	if len(phrases) == 0 {
		phrases = defaultAcademicPhrases
	}
	minChars := rules.MinSentenceChars
	if minChars <= 0 {
		minChars = defaultMinSentenceChars
	}
	heads := rules.BibliographyHeads
	if len(heads) == 0 {
		heads = defaultBibliographyHeads
	}

	stopSet := make(map[string]struct{}, len(stop))
	for _, w := range stop {
		stopSet[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	phraseSet := make(map[string]struct{}, len(phrases))
	n := &Normalizer{
		stopWords:        stopSet,
		minSentenceChars: minChars,
		bibliographyRe:   regexp.MustCompile(`(?im)^[ \t]*(` + strings.Join(heads, "|") + `)[ \t]*:?[ \t]*$`),
	}
	for _, p := range phrases {
		phraseSet[n.Normalize(p)] = struct{}{}
	}
	n.phrases = phraseSet
	return n
}

// Normalize lowercases, maps punctuation to single spaces and collapses
// whitespace. Stop words are kept; lexical comparisons use
// NormalizeLexical instead.
func (n *Normalizer) Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeLexical additionally drops stop words. Used for fingerprinting
// and lexical similarity; semantic scoring sees the un-stripped sentence.
func (n *Normalizer) NormalizeLexical(raw string) string {
	words := strings.Fields(n.Normalize(raw))
	kept := words[:0]
	for _, w := range words {
		if _, ok := n.stopWords[w]; ok {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// SegmentSentences splits text on sentence-terminal punctuation followed by
// a capitalized token, or on explicit newlines. Fragments shorter than the
// configured minimum are dropped; they are headers and labels, not prose.
func (n *Normalizer) SegmentSentences(text string) []Sentence {
	runes := []rune(text)
	var out []Sentence
	segStart := 0

	flush := func(end int) {
		if s, ok := n.trimSentence(runes, segStart, end); ok {
			out = append(out, s)
		}
		segStart = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush(i + 1)
			continue
		}
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Absorb runs like "?!" or "..." into one boundary.
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
			j++
		}
		k := j
		for k < len(runes) && (runes[k] == ' ' || runes[k] == '\t') {
			k++
		}
		if k == len(runes) || runes[k] == '\n' || unicode.IsUpper(runes[k]) || runes[k] == '"' || runes[k] == '“' {
			flush(j)
		}
		i = j - 1
	}
	flush(len(runes))
	return out
}

func (n *Normalizer) trimSentence(runes []rune, start, end int) (Sentence, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if end-start < n.minSentenceChars {
		return Sentence{}, false
	}
	return Sentence{
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
	}, true
}

// ExcludeBibliography drops a trailing reference section from scoring.
// Reference lists legitimately reuse external phrasing and must not be
// penalized. The returned span is in rune offsets over the original text.
func (n *Normalizer) ExcludeBibliography(text string) (string, *Span) {
	locs := n.bibliographyRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}
	// Only a trailing section is excluded; take the last heading.
	start := locs[len(locs)-1][0]
	span := &Span{
		Start: len([]rune(text[:start])),
		End:   len([]rune(text)),
	}
	return text[:start], span
}

var (
	attributionColonRe = regexp.MustCompile(`(?i)^according to\s+[^:]{1,80}:\s*["\x{201c}]`)
	attributionYearRe  = regexp.MustCompile(`(?i)\(\d{4}\)\s+states?:\s*["\x{201c}]`)
)

// IsProperlyQuoted reports whether the sentence is wrapped in quotation
// marks or carries an explicit attribution pattern. Quoted, attributed
// sentences never bear risk; a match against them records as
// quoted_correctly.
func (n *Normalizer) IsProperlyQuoted(sentence string) bool {
	s := strings.TrimSpace(sentence)
	if len(s) < 2 {
		return false
	}
	if hasQuoteWrap(s) {
		return true
	}
	return attributionColonRe.MatchString(s) || attributionYearRe.MatchString(s)
}

func hasQuoteWrap(s string) bool {
	runes := []rune(s)
	first, last := runes[0], runes[len(runes)-1]
	// Trailing terminal punctuation may sit outside the closing quote.
	for len(runes) > 1 && (last == '.' || last == '!' || last == '?') {
		runes = runes[:len(runes)-1]
		last = runes[len(runes)-1]
	}
	opens := first == '"' || first == '“' || first == '‘' || first == '\''
	closes := last == '"' || last == '”' || last == '’' || last == '\''
	return opens && closes
}

// IsCommonAcademicPhrase reports whether the sentence is boilerplate
// scholarly language; such fragments are suppressed as false positives.
func (n *Normalizer) IsCommonAcademicPhrase(sentence string) bool {
	_, ok := n.phrases[n.Normalize(sentence)]
	return ok
}
