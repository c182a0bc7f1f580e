package conf

import (
	"fmt"
	"log/slog"
	"strings"
)

// substitute replaces every "{name}" token in text with the string form of
// lookup(name). Tokens may nest, as in "{user.{kind}}", and are resolved
// innermost first. "{{" and "}}" outside any token are literal braces, and a
// "{" that is never closed is kept as written.
func substitute(text string, lookup func(string) (any, bool)) (string, error) {
	if !strings.ContainsAny(text, "{}") {
		return text, nil
	}

	stack := []*strings.Builder{new(strings.Builder)}

	for i := 0; i < len(text); i++ {
		c := text[i]
		top := stack[len(stack)-1]
		escape := len(stack) == 1 && i+1 < len(text) && text[i+1] == c

		switch {
		case (c == '{' || c == '}') && escape:
			top.WriteByte(c)
			i++

		case c == '{':
			stack = append(stack, new(strings.Builder))

		case c == '}' && len(stack) > 1:
			name := top.String()
			stack = stack[:len(stack)-1]

			v, ok := lookup(name)
			if !ok {
				return "", ErrUnresolvedReference.
					Wrapf("%s is not found", name).
					With(slog.String("name", name))
			}

			stack[len(stack)-1].WriteString(stringify(v))

		default:
			top.WriteByte(c)
		}
	}

	for len(stack) > 1 {
		inner := stack[len(stack)-1].String()
		stack = stack[:len(stack)-1]

		out := stack[len(stack)-1]
		out.WriteByte('{')
		out.WriteString(inner)
	}

	return stack[0].String(), nil
}

// stringify is the text a value contributes to a template.
func stringify(v any) string {
	switch x := unwrap(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
