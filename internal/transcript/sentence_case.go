package transcript

import (
	"strings"
	"unicode"
)

// capitalizeSentenceStarts uppercases the first letter of the text and of
// every word that follows a sentence-ending period, exclamation, or question
// mark. Whisper output is reliably spaced, so a boundary only takes effect
// once whitespace separates it from the next word.
func capitalizeSentenceStarts(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	copy(out, runes)

	atStart := true
	afterBoundary := false
	spaceSeen := false

	for i, r := range runes {
		switch {
		case atStart && unicode.IsLetter(r):
			if capitalizableAt(runes, i) {
				out[i] = unicode.ToUpper(r)
			}
			atStart, afterBoundary, spaceSeen = false, false, false
		case afterBoundary:
			switch {
			case unicode.IsSpace(r):
				spaceSeen = true
			case unicode.IsLetter(r):
				if spaceSeen && capitalizableAt(runes, i) {
					out[i] = unicode.ToUpper(r)
				}
				afterBoundary, spaceSeen = false, false
			case unicode.IsDigit(r):
				afterBoundary, spaceSeen = false, false
			case isSentencePrefixRune(r):
				// Closing quotes or brackets may sit between the period
				// and the next word.
			default:
				if !spaceSeen {
					afterBoundary = false
				}
			}
		}

		switch r {
		case '.':
			afterBoundary = isSentenceBoundaryPeriod(runes, i)
			spaceSeen = false
		case '!', '?':
			afterBoundary = true
			spaceSeen = false
		}
	}

	return string(out)
}

// capitalizableAt reports whether the word starting at idx may be uppercased.
// Abbreviations like "e.g." keep their lowercase form at sentence starts.
func capitalizableAt(runes []rune, idx int) bool {
	end := idx
	for end < len(runes) && (unicode.IsLetter(runes[end]) || runes[end] == '.') {
		end++
	}
	token := strings.ToLower(strings.Trim(string(runes[idx:end]), "."))
	if token == "" {
		return true
	}
	return !isLowercaseSentenceAbbreviation(token)
}

// isSentencePrefixRune matches punctuation that may precede the first letter
// of a sentence.
func isSentencePrefixRune(r rune) bool {
	switch r {
	case ')', ']', '}', '\'', '"', '’', '”':
		return true
	default:
		return false
	}
}
