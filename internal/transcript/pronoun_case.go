package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	pronounIContractionPattern = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re|s)\b`)
	pronounIWordPattern        = regexp.MustCompile(`\bi\b`)
)

// capitalizeStandalonePronounI uppercases the standalone pronoun "i" while
// leaving dotted tokens like "i.e." and initialism interiors untouched.
func capitalizeStandalonePronounI(text string) string {
	matches := pronounIWordPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		out.WriteString(text[last:start])
		if partOfDottedToken(text, start, end) {
			out.WriteString(text[start:end])
		} else {
			out.WriteString("I")
		}
		last = end
	}

	out.WriteString(text[last:])
	return out.String()
}

// partOfDottedToken reports whether the matched "i" is glued to periods the
// way abbreviation letters are.
func partOfDottedToken(text string, start int, end int) bool {
	if end+1 < len(text) && text[end] == '.' {
		next, _ := utf8.DecodeRuneInString(text[end+1:])
		if unicode.IsLetter(next) {
			return true
		}
	}

	if start > 1 && text[start-1] == '.' && end < len(text) && text[end] == '.' {
		prev, _ := utf8.DecodeLastRuneInString(text[:start-1])
		return unicode.IsLetter(prev)
	}

	return false
}
