package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/aconf/conf"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{".yml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{" .json ", FormatJSON, false},
		{"toml", DefaultFormat, true},
		{"", DefaultFormat, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}

			if tt.wantErr && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}

			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	if got := FormatOf("/etc/app/config.json"); got != FormatJSON {
		t.Errorf("FormatOf(json) = %v", got)
	}

	if got := FormatOf("config"); got != DefaultFormat {
		t.Errorf("FormatOf(no ext) = %v", got)
	}
}

func TestDecode_KeepsOrder(t *testing.T) {
	src := `
zeta: 1
alpha:
  port: 8080
  host: localhost
mid: [a, "${zeta}"]
`

	n, err := DecodeString(src, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := n.Keys(), []string{"zeta", "alpha", "mid"}; !slices.Equal(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	child, err := n.Get("alpha")
	if err != nil {
		t.Fatal(err)
	}

	node, ok := child.(*conf.Node)
	if !ok {
		t.Fatalf("alpha = %T, want *conf.Node", child)
	}

	if got, want := node.Keys(), []string{"port", "host"}; !slices.Equal(got, want) {
		t.Errorf("alpha keys = %v, want %v", got, want)
	}

	if port, _ := n.Get("alpha.port"); port != 8080 {
		t.Errorf("alpha.port = %#v, want int 8080", port)
	}
}

func TestDecode_MultipleDocuments(t *testing.T) {
	src := "a: 1\nb: {c: 2}\n---\nb: {d: 3}\na: 4\n"

	n, err := DecodeString(src, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{"a": 4, "b": map[string]any{"c": 2, "d": 3}}
	if !n.Equal(want) {
		t.Errorf("decoded = %v, want %v", n, want)
	}
}

func TestDecode_NullKeyRejected(t *testing.T) {
	for _, src := range []string{
		"~: none\n",
		"null: none\n",
		"a: 1\nb:\n  c: {~: 2}\n",
		"a: 1\n---\nNULL: 2\n",
	} {
		_, err := DecodeString(src, FormatYAML)
		if !errors.Is(err, conf.ErrInvalidKey) || !errors.Is(err, ErrDecode) {
			t.Errorf("%q: expected ErrDecode wrapping ErrInvalidKey, got %v", src, err)
		}
	}
}

func TestDecode_QuotedNullKey(t *testing.T) {
	n, err := DecodeString("\"null\": x\n'~': y\n", FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := n.Keys(), []string{"null", "~"}; !slices.Equal(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDecode_JSON(t *testing.T) {
	n, err := DecodeString(`{"b": {"x": true}, "a": [1, 2.5]}`, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := n.Keys(), []string{"b", "a"}; !slices.Equal(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	if !n.Equal(map[string]any{"b": map[string]any{"x": true}, "a": []any{1, 2.5}}) {
		t.Errorf("decoded = %v", n)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
		want   error
	}{
		{"invalid json", `{"a": }`, FormatJSON, ErrDecode},
		{"scalar document", "just text\n", FormatYAML, ErrDecode},
		{"sequence document", "- a\n- b\n", FormatYAML, ErrDecode},
		{"unknown format", "a: 1", Format(9), ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeString(tt.src, tt.format); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, f := range []Format{FormatYAML, FormatJSON} {
		n, err := DecodeString("", f)
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}

		if n.Len() != 0 {
			t.Errorf("%v: expected empty node, got %v", f, n)
		}
	}
}

func TestDecode_Options(t *testing.T) {
	n, err := DecodeString("a.b: 1\n", FormatYAML, conf.WithSeparator(""))
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := n.Get("a.b"); got != 1 {
		t.Errorf("a.b = %#v", got)
	}

	if n.Len() != 1 {
		t.Errorf("expected one flat key, got %v", n.Keys())
	}
}

func TestDecode_NestedOptions(t *testing.T) {
	src := "top.k: 1\nouter:\n  inner.k: 2\n  list:\n    - x.y: 3\n"

	tests := []struct {
		name string
		sep  string
		want map[string]any
	}{
		{"none", "", map[string]any{
			"top.k": 1,
			"outer": map[string]any{
				"inner.k": 2,
				"list":    []any{map[string]any{"x.y": 3}},
			},
		}},
		{"slash", "/", map[string]any{
			"top.k": 1,
			"outer": map[string]any{
				"inner.k": 2,
				"list":    []any{map[string]any{"x.y": 3}},
			},
		}},
		{"dot", ".", map[string]any{
			"top": map[string]any{"k": 1},
			"outer": map[string]any{
				"inner": map[string]any{"k": 2},
				"list":  []any{map[string]any{"x": map[string]any{"y": 3}}},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := DecodeString(src, FormatYAML, conf.WithSeparator(tt.sep))
			if err != nil {
				t.Fatal(err)
			}

			if !n.Equal(tt.want) {
				t.Errorf("decoded = %v, want %v", n, tt.want)
			}
		})
	}
}

func TestDecodeValue_Options(t *testing.T) {
	got, ok := DecodeValue("{a.b: 1}", conf.WithSeparator("")).(*conf.Node)
	if !ok {
		t.Fatalf("expected a node, got %T", got)
	}

	if !got.Equal(map[string]any{"a.b": 1}) {
		t.Errorf("decoded = %v", got)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")

	if err := os.WriteFile(path, []byte(`{"name": "svc", "port": 80}`), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !n.Equal(map[string]any{"name": "svc", "port": 80}) {
		t.Errorf("decoded = %v", n)
	}

	_, err = DecodeFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestEncode_JSON(t *testing.T) {
	n := conf.New()
	_ = n.Set("b", 1)
	_ = n.Set("a.c", "x")
	_ = n.Set("v", conf.NewVariable([]any{true, nil}))

	var buf bytes.Buffer
	if err := Encode(&buf, n, FormatJSON, 0); err != nil {
		t.Fatal(err)
	}

	want := `{"b":1,"a":{"c":"x"},"v":[true,null]}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("compact:\nwant: %q\ngot:  %q", want, got)
	}

	buf.Reset()

	if err := Encode(&buf, n, FormatJSON, 2); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "\n  \"a\": {\n    \"c\": \"x\"\n  },") {
		t.Errorf("indented output:\n%s", buf.String())
	}
}

func TestEncode_YAMLRoundTrip(t *testing.T) {
	n := conf.New()
	_ = n.Set("zeta", 1)
	_ = n.Set("alpha.host", "localhost")
	_ = n.Set("alpha.tags", []any{"a", "b"})

	for _, indent := range []int{0, DefaultIndent} {
		var buf bytes.Buffer
		if err := Encode(&buf, n, FormatYAML, indent); err != nil {
			t.Fatal(err)
		}

		out := buf.String()
		if strings.Index(out, "zeta") > strings.Index(out, "alpha") {
			t.Errorf("indent %d: key order lost:\n%s", indent, out)
		}

		back, err := DecodeString(out, FormatYAML)
		if err != nil {
			t.Fatalf("indent %d: %v\n%s", indent, err, out)
		}

		if !back.Equal(n) {
			t.Errorf("indent %d: decoded %v, want %v", indent, back, n)
		}
	}
}

func TestEncodeValue_Scalar(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, "text", FormatJSON, 0); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "\"text\"\n" {
		t.Errorf("got %q", got)
	}

	if err := EncodeValue(&buf, 1, Format(7), 0); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"8080", 8080},
		{"true", true},
		{"1.5", 1.5},
		{"text", "text"},
		{"${a}", "${a}"},
		{"[a, 1]", []any{"a", 1}},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DecodeValue(tt.in); !conf.Equal(got, tt.want) {
				t.Errorf("DecodeValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
