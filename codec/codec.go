package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
	"github.com/klauspost/readahead"

	"github.com/ardnew/aconf/conf"
)

// Predefined errors.
var (
	ErrDecode        = conf.NewError("decode failed")
	ErrEncode        = conf.NewError("encode failed")
	ErrInvalidFormat = conf.NewError("invalid format")
)

// Format identifies a text representation of a configuration tree.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// DefaultFormat is used when no format is given or implied.
const DefaultFormat = FormatYAML

// DefaultIndent is the indentation width of encoded output.
const DefaultIndent = 2

var formatName = map[Format]string{
	FormatYAML: "yaml",
	FormatJSON: "json",
}

// String returns "yaml" or "json".
func (f Format) String() string {
	if s, ok := formatName[f]; ok {
		return s
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

// Formats returns the names of all formats.
func Formats() []string {
	return []string{FormatYAML.String(), FormatJSON.String()}
}

// ParseFormat parses a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return DefaultFormat, ErrInvalidFormat.
			Wrapf("%q", s).
			With(slog.String("format", s))
	}
}

// FormatOf returns the format implied by the extension of path, or
// [DefaultFormat].
func FormatOf(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return DefaultFormat
	}

	return f
}

// Decode reads a configuration tree from r. Mapping key order is kept, and
// a YAML stream with several documents is merged left to right.
func Decode(r io.Reader, format Format, opts ...conf.Option) (*conf.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
			return nil, ErrDecode.
				Wrapf("invalid JSON").
				With(slog.String("format", format.String()))
		}

	case FormatYAML:
		if err := checkKeys(data); err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidFormat.Wrapf("%s", format)
	}

	// JSON is a subset of YAML, so one ordered decoder serves both.
	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())
	root := conf.New(opts...)

	for {
		var doc any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return root, nil
		}

		if err != nil {
			return nil, ErrDecode.Wrap(err).With(slog.String("format", format.String()))
		}

		if doc == nil {
			continue
		}

		pairs, ok := doc.(yaml.MapSlice)
		if !ok {
			return nil, ErrDecode.
				Wrapf("document is %T, not a mapping", doc).
				With(slog.String("format", format.String()))
		}

		src, err := decoder{root}.pairs(pairs)
		if err != nil {
			return nil, err
		}

		if err := root.Merge(src); err != nil {
			return nil, ErrDecode.Wrap(err)
		}
	}
}

// DecodeString is [Decode] over a string.
func DecodeString(s string, format Format, opts ...conf.Option) (*conf.Node, error) {
	return Decode(strings.NewReader(s), format, opts...)
}

// DecodeFile reads the file at path in the format implied by its
// extension.
func DecodeFile(path string, opts ...conf.Option) (*conf.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	n, err := Decode(ra, FormatOf(path), opts...)
	if err != nil {
		return nil, conf.WrapError(err).With(slog.String("path", path))
	}

	return n, nil
}

// DecodeValue parses text as a single YAML value, so "8080" yields an int
// and "[a, b]" a slice. Mappings become nodes built with opts. Empty text,
// text holding placeholders, and text that is not valid YAML are returned
// unchanged.
func DecodeValue(text string, opts ...conf.Option) any {
	if strings.TrimSpace(text) == "" || strings.Contains(text, "${") {
		return text
	}

	var v any

	if err := yaml.UnmarshalWithOptions([]byte(text), &v, yaml.UseOrderedMap()); err != nil {
		return text
	}

	out, err := decoder{conf.New(opts...)}.native(v)
	if err != nil {
		return text
	}

	return out
}

// checkKeys rejects YAML mapping keys that are null, such as "~", "null",
// or an empty key. The decoder reads those as the string "null".
func checkKeys(data []byte) error {
	f, err := parser.ParseBytes(data, 0)
	if err != nil {
		// The decoder reports syntax errors with more context.
		return nil
	}

	var v nullKeys
	for _, doc := range f.Docs {
		ast.Walk(&v, doc)

		if v.found {
			return ErrDecode.
				Wrap(conf.ErrInvalidKey.Wrapf("null mapping key at line %d", v.line)).
				With(slog.Int("line", v.line))
		}
	}

	return nil
}

// nullKeys is an [ast.Visitor] that records the first null mapping key.
type nullKeys struct {
	found bool
	line  int
}

func (v *nullKeys) Visit(node ast.Node) ast.Visitor {
	if v.found {
		return nil
	}

	mv, ok := node.(*ast.MappingValueNode)
	if !ok || mv.Key == nil || !isNull(mv.Key) {
		return v
	}

	v.found = true
	if tk := mv.Key.GetToken(); tk != nil && tk.Position != nil {
		v.line = tk.Position.Line
	}

	return nil
}

func isNull(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.NullNode:
		return true
	case *ast.MappingKeyNode:
		return n.Value != nil && isNull(n.Value)
	case *ast.TagNode:
		return n.Start != nil && n.Start.Value == string(token.NullTag)
	default:
		return false
	}
}

// decoder converts decoded values into the types stored by conf. Nested
// mappings become nodes derived from root, so they split keys the same way.
type decoder struct {
	root *conf.Node
}

// pairs converts a decoded mapping into entries for [conf.Node.Merge].
func (d decoder) pairs(ms yaml.MapSlice) ([]conf.Pair, error) {
	out := make([]conf.Pair, 0, len(ms))

	for _, item := range ms {
		key, err := keyString(item.Key)
		if err != nil {
			return nil, err
		}

		value, err := d.native(item.Value)
		if err != nil {
			return nil, err
		}

		out = append(out, conf.Pair{Key: key, Value: value})
	}

	return out, nil
}

func keyString(k any) (string, error) {
	switch v := k.(type) {
	case string:
		return v, nil
	case yaml.MapSlice, []any:
		return "", ErrDecode.Wrapf("mapping key %v is not a scalar", v)
	default:
		return fmt.Sprint(v), nil
	}
}

// native turns mappings into nodes and integers into int when they fit.
func (d decoder) native(v any) (any, error) {
	switch x := v.(type) {
	case yaml.MapSlice:
		pairs, err := d.pairs(x)
		if err != nil {
			return nil, err
		}

		n := d.root.Derive()
		if err := n.Merge(pairs); err != nil {
			return nil, ErrDecode.Wrap(err)
		}

		return n, nil

	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			e, err := d.native(elem)
			if err != nil {
				return nil, err
			}

			out[i] = e
		}

		return out, nil

	case uint64:
		if x <= math.MaxInt {
			return int(x), nil
		}

		return x, nil

	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x), nil
		}

		return x, nil

	default:
		return v, nil
	}
}

// Encode writes n to w. An indent of zero writes the most compact form.
func Encode(w io.Writer, n *conf.Node, format Format, indent int) error {
	return EncodeValue(w, n, format, indent)
}

// EncodeValue writes any configuration value to w, converting nodes and
// Variables as [Encode] does.
func EncodeValue(w io.Writer, v any, format Format, indent int) error {
	switch format {
	case FormatYAML:
		return encodeYAML(w, v, indent)
	case FormatJSON:
		return encodeJSON(w, v, indent)
	default:
		return ErrInvalidFormat.Wrapf("%s", format)
	}
}

func encodeYAML(w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(context.Background(), ordered(v), opts...)
	if err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", "yaml"))
	}

	if _, err := w.Write(data); err != nil {
		return ErrEncode.Wrap(err)
	}

	return nil
}

// ordered converts nodes into yaml.MapSlice so that key order survives.
func ordered(v any) any {
	switch x := v.(type) {
	case *conf.Variable:
		return ordered(x.Value())

	case *conf.Node:
		ms := make(yaml.MapSlice, 0, x.Len())
		for key, value := range x.All() {
			ms = append(ms, yaml.MapItem{Key: key, Value: ordered(value)})
		}

		return ms

	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = ordered(elem)
		}

		return out

	default:
		return v
	}
}

func encodeJSON(w io.Writer, v any, indent int) error {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return ErrEncode.Wrap(err).With(slog.String("format", "json"))
	}

	out := buf.Bytes()

	if indent > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", strings.Repeat(" ", indent)); err != nil {
			return ErrEncode.Wrap(err)
		}

		out = pretty.Bytes()
	}

	if _, err := w.Write(append(out, '\n')); err != nil {
		return ErrEncode.Wrap(err)
	}

	return nil
}

// writeJSON writes v with node keys in insertion order.
func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case *conf.Variable:
		return writeJSON(buf, x.Value())

	case *conf.Node:
		buf.WriteByte('{')

		i := 0
		for key, value := range x.All() {
			if i > 0 {
				buf.WriteByte(',')
			}

			i++

			k, err := json.Marshal(key)
			if err != nil {
				return err
			}

			buf.Write(k)
			buf.WriteByte(':')

			if err := writeJSON(buf, value); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

		return nil

	case []any:
		buf.WriteByte('[')

		for i, elem := range x {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, elem); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

		return nil

	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}

		buf.Write(data)

		return nil
	}
}
