package config

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgv splits a shell-like command string into argv. Single and double
// quotes group words, a backslash escapes the next rune (inside quotes too),
// and blank or comment lines produce a nil argv.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var argv []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			argv = append(argv, word.String())
			word.Reset()
		}
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
			}
			i++
			word.WriteRune(runes[i])
		case r == '\'' || r == '"':
			end, err := scanQuoted(runes, i, &word)
			if err != nil {
				return nil, fmt.Errorf("%v in command: %q", err, input)
			}
			i = end
		case unicode.IsSpace(r):
			flush()
		default:
			word.WriteRune(r)
		}
	}

	flush()
	return argv, nil
}

// scanQuoted consumes a quoted span starting at the opening quote and returns
// the index of the closing quote.
func scanQuoted(runes []rune, start int, word *strings.Builder) (int, error) {
	quote := runes[start]
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 >= len(runes) {
				return 0, fmt.Errorf("unterminated escape sequence")
			}
			i++
			word.WriteRune(runes[i])
		case quote:
			return i, nil
		default:
			word.WriteRune(runes[i])
		}
	}
	return 0, fmt.Errorf("unterminated quote")
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
