package anthropic

import (
	"devwise/pkg/errors"
)

// ExtractJSON returns the first balanced brace-delimited object in model
// output, ignoring braces inside JSON strings. Models occasionally wrap
// the requested JSON in prose despite instructions.
func ExtractJSON(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, c := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", errors.Wrap(errors.ErrMalformedResponse, "no JSON object in model output")
}
