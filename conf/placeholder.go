package conf

import "strings"

const (
	openToken  = "${"
	closeToken = '}'
)

// FindPlaceholders returns the names referenced by every balanced "${...}"
// span in text, including spans nested inside other spans.
//
// The outermost spans of text are listed first, left to right, followed by
// the expansion of each of those spans in turn:
//
//	FindPlaceholders("${a} ${b.${c}}") // ["a", "b.${c}", "c"]
//
// Every span is reported exactly once, so a name written twice appears twice.
// An opening "${" without a matching "}" is ignored.
//
// Nesting is tracked with explicit stacks; input depth never grows the call
// stack.
func FindPlaceholders(text string) []string {
	if !strings.Contains(text, openToken) {
		return nil
	}

	var names []string

	pending := []string{text}
	for len(pending) > 0 {
		last := len(pending) - 1
		next := pending[last]
		pending = pending[:last]

		spans := outerSpans(next)
		names = append(names, spans...)

		// Push in reverse so the leftmost span is expanded first.
		for i := len(spans) - 1; i >= 0; i-- {
			if strings.Contains(spans[i], openToken) {
				pending = append(pending, spans[i])
			}
		}
	}

	return names
}

// outerSpans returns the inner text of each top-level balanced span in text.
func outerSpans(text string) []string {
	var (
		spans []string
		open  []int
	)

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], openToken):
			open = append(open, i)
			i += len(openToken)

		case text[i] == closeToken && len(open) > 0:
			start := open[len(open)-1]
			open = open[:len(open)-1]

			if len(open) == 0 {
				spans = append(spans, text[start+len(openToken):i])
			}

			i++

		default:
			i++
		}
	}

	return spans
}

// wholePlaceholder reports whether text consists of exactly one balanced
// span with nothing around it, returning the span's inner text.
func wholePlaceholder(text string) (string, bool) {
	if !strings.HasPrefix(text, openToken) || !strings.HasSuffix(text, string(closeToken)) {
		return "", false
	}

	depth := 0

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], openToken):
			depth++
			i += len(openToken)

		case text[i] == closeToken && depth > 0:
			depth--
			if depth == 0 {
				if i != len(text)-1 {
					return "", false
				}

				return text[len(openToken):i], true
			}

			i++

		default:
			i++
		}
	}

	return "", false
}

// isDynamic reports whether a placeholder name is itself built from other
// placeholders, as in "${user.${kind}}".
func isDynamic(name string) bool {
	return strings.Contains(name, openToken)
}
