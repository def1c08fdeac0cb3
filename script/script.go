// Package script classifies characters of a target writing system for
// suggestion cleaning. A Script is parameterized by its letter ranges; Latin
// letters and ASCII digits are always accepted alongside it.
package script

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Script describes the letters and sentence terminators of a writing system.
type Script struct {
	Name string
	// Letters lists the code point ranges counted as letters of the script.
	Letters *unicode.RangeTable
	// FullStop is the script's own sentence terminator. It survives the
	// trailing strip of Clean.
	FullStop rune
	// Terminators end a sentence. Prediction is suppressed after them.
	Terminators []rune
}

// Devanagari covers the whole Devanagari block (U+0900–U+097F), so vowel
// signs, viramas and the danda count as letters.
var Devanagari = &Script{
	Name: "devanagari",
	Letters: &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}},
	},
	FullStop:    '।',
	Terminators: []rune{'।', '.', '!', '?'},
}

// IsLatin reports whether r is an ASCII letter.
func IsLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// IsDigit reports whether r is an ASCII digit.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsLetter reports whether r is a Latin letter or a letter of s.
func (s *Script) IsLetter(r rune) bool {
	return IsLatin(r) || unicode.Is(s.Letters, r)
}

// IsWordRune reports whether r may appear at the edge of a cleaned token.
func (s *Script) IsWordRune(r rune) bool {
	return s.IsLetter(r) || IsDigit(r)
}

// IsTerminator reports whether r ends a sentence.
func (s *Script) IsTerminator(r rune) bool {
	for _, t := range s.Terminators {
		if r == t {
			return true
		}
	}
	return false
}

// EndsSentence reports whether text, ignoring trailing whitespace, ends in a
// terminator.
func (s *Script) EndsSentence(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return s.IsTerminator(r)
}

// HasLetter reports whether text contains at least one letter.
func (s *Script) HasLetter(text string) bool {
	return strings.IndexFunc(text, s.IsLetter) >= 0
}

// Clean strips leading runes that are not letters or digits and trailing
// runes that are not letters, digits, or the full stop. It returns "" unless
// the result has a letter and at least two characters.
func (s *Script) Clean(token string) string {
	cleaned := strings.TrimSpace(token)
	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool { return !s.IsWordRune(r) })
	cleaned = strings.TrimRightFunc(cleaned, func(r rune) bool {
		return !s.IsWordRune(r) && r != s.FullStop
	})
	if !s.HasLetter(cleaned) {
		return ""
	}
	if utf8.RuneCountInString(cleaned) < 2 {
		return ""
	}
	return cleaned
}

// SplitSentences splits text on runs of terminators and drops blank pieces.
func (s *Script) SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, s.IsTerminator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Fold returns the case-insensitive comparison key of token. Canonically
// equivalent spellings (e.g. precomposed and decomposed nukta forms) share a
// key.
func Fold(token string) string {
	return cases.Fold().String(norm.NFC.String(token))
}
