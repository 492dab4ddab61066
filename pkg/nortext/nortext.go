// Package nortext provides Norwegian-aware text helpers used across the
// analysis pipeline: case folding, normalization, offset-preserving search,
// tokenization, and kroner amount parsing/formatting.
package nortext

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold returns a case-folded form of s for caseless comparison. Byte
// offsets into the result are NOT guaranteed to match the input; use
// IndexFold when offsets matter.
func Fold(s string) string {
	return folder.String(s)
}

// Normalize returns s in Unicode NFC form so that composed and decomposed
// spellings of æ/ø/å compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// EqualFold reports whether a and b are equal under case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether substr occurs in s under case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// IndexFold returns the byte offset of the first caseless occurrence of
// substr in s, or -1. Lowercasing is used instead of full folding because
// it preserves byte offsets for Norwegian and English text (æøå and ASCII
// lowercase to equal-width runes).
func IndexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// Token is a word with its byte offsets in the source string.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits s into letter/digit runs with byte offsets.
func Tokenize(s string) []Token {
	var tokens []Token
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: s[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: s[start:], Start: start, End: len(s)})
	}
	return tokens
}

// HasWord reports whether word occurs in s as a whole token under case
// folding ("no" must not match inside "nok").
func HasWord(s, word string) bool {
	for _, tok := range Tokenize(s) {
		if EqualFold(tok.Text, word) {
			return true
		}
	}
	return false
}

var nokPrinter = message.NewPrinter(language.Norwegian)

// FormatNOK renders an amount in kroner with Norwegian digit grouping,
// e.g. 50000 -> "kr 50 000".
func FormatNOK(amount float64) string {
	return nokPrinter.Sprintf("kr %v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// ParseAmount parses a Norwegian-style money string ("kr 50.000",
// "50 000,50", "NOK 12.500,-") into a float64. Period and space group
// thousands; comma is the decimal separator.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"kr", "KR", "Kr", "NOK", "nok"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), ",-")
	if s == "" {
		return 0, false
	}

	var intPart, fracPart strings.Builder
	inFrac := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if inFrac {
				fracPart.WriteRune(r)
			} else {
				intPart.WriteRune(r)
			}
		case r == '.' || r == ' ' || r == '\u00a0':
			// thousand separators
		case r == ',':
			if inFrac {
				return 0, false
			}
			inFrac = true
		default:
			return 0, false
		}
	}
	if intPart.Len() == 0 {
		return 0, false
	}

	var value float64
	for _, r := range intPart.String() {
		value = value*10 + float64(r-'0')
	}
	if fracPart.Len() > 0 {
		div := 1.0
		var frac float64
		for _, r := range fracPart.String() {
			frac = frac*10 + float64(r-'0')
			div *= 10
		}
		value += frac / div
	}
	return value, true
}

// FindAmount scans text for the first kroner amount ("kr 50.000",
// "NOK 12 500") and returns its value and byte offsets.
func FindAmount(text string) (float64, int, int, bool) {
	lower := strings.ToLower(text)
	for _, marker := range []string{"kr ", "kr. ", "nok "} {
		idx := 0
		for {
			rel := strings.Index(lower[idx:], marker)
			if rel < 0 {
				break
			}
			start := idx + rel
			numStart := start + len(marker)
			end := numStart
			for end < len(text) {
				c := text[end]
				if c >= '0' && c <= '9' || c == '.' || c == ',' || c == ' ' {
					end++
					continue
				}
				break
			}
			// trim trailing separators picked up by the scan
			for end > numStart {
				c := text[end-1]
				if c == '.' || c == ',' || c == ' ' {
					end--
					continue
				}
				break
			}
			if v, ok := ParseAmount(text[numStart:end]); ok && v > 0 {
				return v, start, end, true
			}
			idx = numStart
		}
	}
	return 0, 0, 0, false
}
