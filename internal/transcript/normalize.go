// Package transcript normalizes recognized text before it reaches the clipboard.
package transcript

import "strings"

// Options controls transcript formatting behavior.
type Options struct {
	// TrailingSpace appends one space so consecutive dictations join cleanly.
	TrailingSpace       bool
	CapitalizeSentences bool
}

// Clean collapses whitespace in recognized text and applies configured
// normalization.
func Clean(text string, opts Options) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		normalized = capitalizeSentences(normalized)
	}

	if opts.TrailingSpace {
		return normalized + " "
	}
	return normalized
}

func capitalizeSentences(text string) string {
	text = capitalizeSentenceStarts(text)
	text = pronounIContractionPattern.ReplaceAllStringFunc(text, func(match string) string {
		return "I" + match[1:]
	})
	return capitalizeStandalonePronounI(text)
}
