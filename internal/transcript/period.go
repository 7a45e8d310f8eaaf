package transcript

import (
	"strings"
	"unicode"
)

// lowercaseSentenceAbbreviations are tokens that keep their lowercase form
// even when they land at a sentence start.
var lowercaseSentenceAbbreviations = map[string]struct{}{
	"e.g": {},
	"etc": {},
	"i.e": {},
	"vs":  {},
}

// nonTerminalAbbreviations are tokens whose trailing period usually does not
// end a sentence. Ambiguous entries end sentences often enough that the
// following word decides.
var nonTerminalAbbreviations = map[string]bool{
	// Latin/editorial.
	"e.g": false,
	"i.e": false,
	"cf":  false,
	"etc": true,
	"vs":  true,

	// Titles.
	"dr":   false,
	"mr":   false,
	"mrs":  false,
	"ms":   false,
	"prof": false,
	"sr":   false,
	"jr":   false,

	// Reference markers.
	"ch":  false,
	"eq":  false,
	"fig": false,
	"ref": false,
	"sec": false,

	// Units common in dictation.
	"hr":   false,
	"hrs":  false,
	"lb":   false,
	"lbs":  false,
	"min":  false,
	"mins": false,
	"oz":   false,
	"tbsp": false,
	"tsp":  false,
}

// boundaryCueWords are lowercase words that, after an ambiguous abbreviation
// or initialism, strongly suggest a new sentence started. Kept narrow so
// phrases like "etc. and so on" stay joined.
var boundaryCueWords = map[string]struct{}{
	"finally":   {},
	"however":   {},
	"meanwhile": {},
	"next":      {},
	"then":      {},
	"therefore": {},

	"he":   {},
	"i":    {},
	"it":   {},
	"she":  {},
	"they": {},
	"we":   {},
	"you":  {},
}

// isSentenceBoundaryPeriod decides whether the period at idx terminates a
// sentence. Decimal points, embedded periods (file.txt), abbreviations, and
// initialisms (u.s.) do not.
func isSentenceBoundaryPeriod(runes []rune, idx int) bool {
	if idx < 0 || idx >= len(runes) || runes[idx] != '.' {
		return false
	}

	if idx > 0 && idx+1 < len(runes) &&
		unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1]) {
		return false
	}

	if idx+1 < len(runes) {
		next := runes[idx+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.' {
			return false
		}
	}

	token := strings.ToLower(tokenEndingAt(runes, idx))
	if token == "" {
		return true
	}
	if ambiguous, known := nonTerminalAbbreviations[token]; known {
		if ambiguous {
			return nextWordStartsSentence(runes, idx+1)
		}
		return false
	}
	if isInitialism(token) {
		return nextWordStartsSentence(runes, idx+1)
	}

	return true
}

// tokenEndingAt extracts the letters-and-periods token immediately before the
// period at idx, with surrounding periods stripped.
func tokenEndingAt(runes []rune, idx int) string {
	start := idx
	for start > 0 {
		if r := runes[start-1]; unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	return strings.Trim(string(runes[start:idx]), ".")
}

// nextWordStartsSentence peeks past whitespace and closing punctuation for
// the next word and reports whether it reads like a sentence opener.
func nextWordStartsSentence(runes []rune, from int) bool {
	i := from
	for i < len(runes) && (unicode.IsSpace(runes[i]) || isSentencePrefixRune(runes[i])) {
		i++
	}
	if i >= len(runes) {
		return true
	}
	if !unicode.IsLetter(runes[i]) {
		return false
	}
	if unicode.IsUpper(runes[i]) {
		return true
	}

	end := i
	for end < len(runes) && unicode.IsLetter(runes[end]) {
		end++
	}
	_, cue := boundaryCueWords[strings.ToLower(string(runes[i:end]))]
	return cue
}

func isLowercaseSentenceAbbreviation(token string) bool {
	_, ok := lowercaseSentenceAbbreviations[token]
	return ok
}

// isInitialism reports dotted single-letter sequences such as "u.s".
func isInitialism(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		letters := []rune(part)
		if len(letters) != 1 || !unicode.IsLetter(letters[0]) {
			return false
		}
	}
	return true
}
