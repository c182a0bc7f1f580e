package repl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
	"github.com/ardnew/aconf/log"
)

// Config holds the options applied to the explored configuration.
type Config struct {
	// Node options build values typed at the prompt and configurations
	// reloaded from the editor.
	Node []conf.Option

	// Interpolate options are used by the interpolate command and by
	// templates typed at the prompt.
	Interpolate []conf.InterpolateOption
}

// session is the configuration being explored.
type session struct {
	root   *conf.Node
	cfg    Config
	logger log.Logger
}

// eval applies one key-mode line: "KEY" prints a value, "KEY = VALUE"
// assigns one, and any other text holding "${" is resolved as a template
// against a copy of the tree.
func (s *session) eval(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)

	if key, text, ok := assignment(line); ok {
		return s.assign(ctx, key, text)
	}

	if strings.Contains(line, "${") {
		return s.template(ctx, line)
	}

	v, err := s.root.Value(line)
	if err != nil {
		return "", err
	}

	return show(v)
}

// assignment splits "KEY = VALUE". KEY must be a single word.
func assignment(line string) (key, text string, ok bool) {
	key, text, ok = strings.Cut(line, "=")
	key = strings.TrimSpace(key)

	if !ok || key == "" || strings.ContainsAny(key, " \t$") {
		return "", "", false
	}

	return key, strings.TrimSpace(text), true
}

func (s *session) assign(ctx context.Context, key, text string) (string, error) {
	value := codec.DecodeValue(text, s.cfg.Node...)

	if err := s.root.Set(key, value); err != nil {
		return "", err
	}

	s.logger.TraceContext(ctx, "repl set", slog.String("key", key), slog.Any("value", value))

	out, err := show(value)
	if err != nil {
		return "", err
	}

	return key + " = " + out, nil
}

// template resolves text as if it were stored in the tree.
func (s *session) template(ctx context.Context, text string) (string, error) {
	tree := s.root.Clone()

	key := "_"
	for tree.Has(key) {
		key += "_"
	}

	if err := tree.Set(key, text); err != nil {
		return "", err
	}

	if err := tree.Interpolate(s.cfg.Interpolate...); err != nil {
		return "", err
	}

	v, err := tree.Value(key)
	if err != nil {
		return "", err
	}

	s.logger.TraceContext(ctx, "repl template", slog.String("text", text))

	return show(v)
}

// command runs a command-mode line other than quit, clear, and edit.
func (s *session) command(ctx context.Context, name string, args []string) (string, error) {
	switch name {
	case "h", "help":
		return helpMessage(), nil

	case "l", "list":
		return s.list(args)

	case "s", "set":
		if len(args) < 1 {
			return "", usage("set KEY [VALUE...]")
		}

		return s.assign(ctx, args[0], strings.Join(args[1:], " "))

	case "d", "del", "delete":
		if len(args) != 1 {
			return "", usage("del KEY")
		}

		if err := s.root.Delete(args[0]); err != nil {
			return "", err
		}

		return "deleted " + args[0], nil

	case "p", "placeholders":
		return s.placeholders(), nil

	case "i", "interpolate":
		if err := s.root.Interpolate(s.cfg.Interpolate...); err != nil {
			return "", err
		}

		return "interpolated", nil

	case "v", "validate":
		if err := s.root.Validate(); err != nil {
			return "", err
		}

		return "valid", nil

	case "show":
		return s.dump(args)

	case "w", "write":
		if len(args) != 1 {
			return "", usage("write PATH")
		}

		return s.write(ctx, args[0])

	default:
		return "", fmt.Errorf("unknown command: %s (try 'help')", name)
	}
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", ErrUsage, text)
}

// list describes the direct entries of the root, or of the node at
// args[0].
func (s *session) list(args []string) (string, error) {
	n := s.root

	if len(args) > 0 {
		v, err := s.root.Value(args[0])
		if err != nil {
			return "", err
		}

		child, ok := v.(*conf.Node)
		if !ok {
			return "", fmt.Errorf("%w: %s is not a mapping", ErrUsage, args[0])
		}

		n = child
	}

	var b strings.Builder

	for key, value := range n.All() {
		fmt.Fprintf(&b, "  %s %s\n", key, hintStyle.Render(preview(value)))
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// placeholders lists each key holding placeholders with the names it
// references.
func (s *session) placeholders() string {
	var b strings.Builder

	for key, value := range s.root.AllItems() {
		var names []string

		for _, text := range textsOf(value) {
			for _, name := range conf.FindPlaceholders(text) {
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}

		if len(names) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", key, strings.Join(names, ", "))
		}
	}

	if b.Len() == 0 {
		return "no placeholders"
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// dump encodes the whole tree in the format named by args[0], or YAML.
func (s *session) dump(args []string) (string, error) {
	format := codec.FormatYAML

	if len(args) > 0 {
		var err error
		if format, err = codec.ParseFormat(args[0]); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	if err := codec.Encode(&b, s.root, format, codec.DefaultIndent); err != nil {
		return "", err
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// write saves the tree to path in the format its extension implies.
func (s *session) write(ctx context.Context, path string) (string, error) {
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := codec.Encode(file, s.root, codec.FormatOf(path), codec.DefaultIndent); err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "repl wrote configuration", slog.String("path", path))

	return "wrote " + path, nil
}

// textsOf returns the strings held by value or by its list elements.
func textsOf(value any) []string {
	if box, ok := value.(*conf.Variable); ok {
		value = box.Value()
	}

	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string

		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}

// show renders a value on one line: scalars as text, composites as flow
// YAML.
func show(v any) (string, error) {
	if box, ok := v.(*conf.Variable); ok {
		v = box.Value()
	}

	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		return x, nil
	}

	if !composite(v) {
		return fmt.Sprint(v), nil
	}

	var b strings.Builder
	if err := codec.EncodeValue(&b, v, codec.FormatYAML, 0); err != nil {
		return "", err
	}

	return strings.TrimSpace(b.String()), nil
}

func composite(v any) bool {
	if _, ok := v.(*conf.Node); ok {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

// preview is a short description of a value for listings.
func preview(v any) string {
	if box, ok := v.(*conf.Variable); ok {
		v = box.Value()
	}

	switch x := v.(type) {
	case *conf.Node:
		return fmt.Sprintf("{ %d items }", x.Len())
	case string:
		if len(x) > 40 {
			x = x[:37] + "..."
		}

		return fmt.Sprintf("%q", x)
	}

	if rv := reflect.ValueOf(v); composite(v) {
		return fmt.Sprintf("[ %d items ]", rv.Len())
	}

	return fmt.Sprint(v)
}
