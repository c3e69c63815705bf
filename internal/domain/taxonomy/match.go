package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsPhrase reports whether phrase occurs in text as a whole word or
// word sequence. Both arguments are expected to be lower-case. A match must
// not be preceded or followed by a letter or digit, so "r" does not match
// "react" and "go" does not match "google".
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for offset := 0; offset <= len(text)-len(phrase); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words splits lower-cased text on whitespace.
func Words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
