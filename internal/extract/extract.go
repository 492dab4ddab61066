// Package extract splits raw letter text into ordered, immutable statements
// with document offsets, polarity tags, and detected claim keys.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

// ErrEmptyInput is returned when the trimmed input text is empty.
var ErrEmptyInput = eris.New("extract: empty input text")

// ClaimTagger detects claim keys in a single statement's text. Returned
// spans are relative to the given text; the extractor rebases them to
// document offsets.
type ClaimTagger interface {
	TagClaims(text string) []model.ClaimRef
}

// ruleCertainty is the extraction certainty assigned to every statement.
// Extraction is rule-based cue matching, so certainty is always 1.0.
const ruleCertainty = 1.0

var defaultNegationCues = []string{"not", "no", "never", "ikke", "aldri", "ingen"}

// Hedging cues mark a statement as tentative. They only matter when the
// statement asserts no claim; a hedged concrete claim is still a claim.
var defaultHedgingCues = []string{"kanskje", "muligens", "trolig", "perhaps", "possibly"}

// abbreviations that end with a period without terminating a sentence.
var abbreviations = map[string]struct{}{
	"jf": {}, "bl": {}, "a": {}, "ca": {}, "nr": {}, "kr": {},
	"evt": {}, "mv": {}, "osv": {}, "dvs": {}, "pkt": {}, "tlf": {},
}

// Extractor segments text into statements. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	tagger ClaimTagger
	cues   map[string]struct{}
	hedges map[string]struct{}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithNegationCues replaces the default negation cue set.
func WithNegationCues(cues ...string) Option {
	return func(e *Extractor) {
		e.cues = foldCueSet(cues)
	}
}

// WithHedgingCues replaces the default hedging cue set.
func WithHedgingCues(cues ...string) Option {
	return func(e *Extractor) {
		e.hedges = foldCueSet(cues)
	}
}

// New returns an Extractor using the given tagger for claim detection. A nil
// tagger is valid; statements then carry no claim keys.
func New(tagger ClaimTagger, opts ...Option) *Extractor {
	e := &Extractor{
		tagger: tagger,
		cues:   foldCueSet(defaultNegationCues),
		hedges: foldCueSet(defaultHedgingCues),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func foldCueSet(cues []string) map[string]struct{} {
	set := make(map[string]struct{}, len(cues))
	for _, c := range cues {
		set[nortext.Fold(c)] = struct{}{}
	}
	return set
}

// Extract splits text into statements with monotonically increasing,
// non-overlapping offsets. Concatenating the statement texts in order
// reproduces the non-whitespace content of the input.
func (e *Extractor) Extract(text string) ([]model.Statement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	spans := segment(text)
	statements := make([]model.Statement, 0, len(spans))
	for i, sp := range spans {
		statements = append(statements, e.build(i, text, sp.start, sp.end))
	}
	return statements, nil
}

type segSpan struct {
	start int
	end   int
}

// segment walks the text splitting on terminal punctuation followed by
// whitespace or an uppercase letter, and on paragraph breaks. Fragments are
// trimmed; empty ones are dropped.
func segment(text string) []segSpan {
	var spans []segSpan
	segStart := 0
	i := 0
	for i < len(text) {
		if text[i] == '\n' || text[i] == '\r' {
			if skip := paragraphBreak(text, i); skip > 0 {
				spans = appendTrimmed(spans, text, segStart, i)
				i += skip
				segStart = i
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}
		punctStart := i
		j := i + size
		for j < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[j:])
			if !isTerminal(r2) {
				break
			}
			j += s2
		}
		if isBoundary(text, punctStart, j) {
			spans = appendTrimmed(spans, text, segStart, j)
			segStart = j
		}
		i = j
	}
	return appendTrimmed(spans, text, segStart, len(text))
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// paragraphBreak returns the length of the whitespace run starting at i when
// it contains at least two newlines, otherwise 0.
func paragraphBreak(text string, i int) int {
	j := i
	newlines := 0
	for j < len(text) {
		switch text[j] {
		case '\n':
			newlines++
		case '\r', ' ', '\t':
		default:
			if newlines >= 2 {
				return j - i
			}
			return 0
		}
		j++
	}
	if newlines >= 2 {
		return j - i
	}
	return 0
}

// isBoundary decides whether the punctuation run [punctStart, punctEnd) ends
// a sentence. A run followed by whitespace or an uppercase letter does,
// unless a lone period follows a known abbreviation or a single initial.
func isBoundary(text string, punctStart, punctEnd int) bool {
	if punctEnd >= len(text) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(text[punctEnd:])
	if !unicode.IsSpace(next) && !unicode.IsUpper(next) {
		return false
	}
	if text[punctStart:punctEnd] != "." {
		return true
	}
	word := precedingWord(text, punctStart)
	if word == "" {
		// Norwegian ordinals: "12. mars" continues the sentence.
		prev, _ := utf8.DecodeLastRuneInString(text[:punctStart])
		if unicode.IsDigit(prev) && nextLetterIsLower(text, punctEnd) {
			return false
		}
		return true
	}
	if _, ok := abbreviations[strings.ToLower(word)]; ok {
		return false
	}
	if utf8.RuneCountInString(word) == 1 && word != strings.ToLower(word) {
		return false
	}
	return true
}

func nextLetterIsLower(text string, i int) bool {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			return unicode.IsLower(r)
		}
		i += size
	}
	return false
}

func precedingWord(text string, end int) string {
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) {
			break
		}
		start -= size
	}
	return text[start:end]
}

func appendTrimmed(spans []segSpan, text string, from, to int) []segSpan {
	for from < to {
		r, size := utf8.DecodeRuneInString(text[from:])
		if !unicode.IsSpace(r) {
			break
		}
		from += size
	}
	for to > from {
		r, size := utf8.DecodeLastRuneInString(text[from:to])
		if !unicode.IsSpace(r) {
			break
		}
		to -= size
	}
	if from >= to {
		return spans
	}
	return append(spans, segSpan{start: from, end: to})
}

func (e *Extractor) build(id int, text string, start, end int) model.Statement {
	segText := text[start:end]

	var tagged []model.ClaimRef
	if e.tagger != nil {
		tagged = e.tagger.TagClaims(segText)
	}

	polarity := e.classifyPolarity(segText, tagged)

	var refs []model.ClaimRef
	if len(tagged) > 0 {
		refs = make([]model.ClaimRef, 0, len(tagged))
		for _, c := range tagged {
			refs = append(refs, model.ClaimRef{
				Key: c.Key,
				Span: model.Span{
					Start: c.Span.Start + start,
					End:   c.Span.End + start,
					Text:  c.Span.Text,
				},
			})
		}
	}

	return model.Statement{
		ID:        id,
		Text:      segText,
		Start:     start,
		End:       end,
		Polarity:  polarity,
		Certainty: ruleCertainty,
		ClaimKeys: refs,
	}
}

// classifyPolarity applies the cue rules: no negation cue means assertion; a
// cue lying inside a matched claim phrase ("ikke ansvarlig") is part of that
// claim and does not negate the statement; a cue outside every claim phrase
// negates the statement's claims, or marks it neutral when there are none.
// A hedging cue without any asserted claim also marks the statement neutral.
func (e *Extractor) classifyPolarity(text string, claims []model.ClaimRef) model.Polarity {
	anyCue := false
	outerCue := false
	hedged := false
	for _, tok := range nortext.Tokenize(text) {
		folded := nortext.Fold(tok.Text)
		if _, ok := e.hedges[folded]; ok {
			hedged = true
		}
		if _, ok := e.cues[folded]; !ok {
			continue
		}
		anyCue = true
		cue := model.Span{Start: tok.Start, End: tok.End}
		consumed := false
		for _, c := range claims {
			if c.Span.Contains(cue) {
				consumed = true
				break
			}
		}
		if !consumed {
			outerCue = true
		}
	}

	switch {
	case !anyCue || !outerCue:
		if hedged && len(claims) == 0 {
			return model.PolarityNeutral
		}
		return model.PolarityAssertion
	case len(claims) > 0:
		return model.PolarityNegation
	default:
		return model.PolarityNeutral
	}
}
