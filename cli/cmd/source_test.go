package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
)

func TestSource_LoadMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "name: svc\ndb:\n  host: localhost\n  port: 5432\n")
	prod := writeFile(t, dir, "prod.json", `{"db": {"host": "db.prod"}}`)

	s := Source{Files: []string{base, prod}, Separator: "."}

	n, err := s.load(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"name": "svc",
		"db":   map[string]any{"host": "db.prod", "port": 5432},
	}
	if !n.Equal(want) {
		t.Errorf("loaded %v, want %v", n, want)
	}
}

func TestSource_LoadStdin(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.yaml", "a: 1\nb: 1\n")

	ctx := WithStdin(t.Context(), strings.NewReader(`{"b": 2}`))
	s := Source{Files: []string{"-", file}, Stdin: "json", Separator: "."}

	n, err := s.load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if !n.Equal(map[string]any{"a": 1, "b": 2}) {
		t.Errorf("stdin must merge last, got %v", n)
	}
}

func TestSource_Overrides(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.yaml", "db: {port: 1}\n")

	s := Source{
		Files:     []string{file},
		Set:       []string{"db.port=8080", "db.url=pg://${.port}", "tags=[a, b]", "empty="},
		Separator: ".",
	}

	n, err := s.load(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"db":    map[string]any{"port": 8080, "url": "pg://${.port}"},
		"tags":  []any{"a", "b"},
		"empty": "",
	}
	if !n.Equal(want) {
		t.Errorf("loaded %v, want %v", n, want)
	}
}

func TestSource_Errors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.yaml", "a: 1\n")

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"no equals", Source{Files: []string{file}, Set: []string{"a"}, Separator: "."}, ErrInvalidOverride},
		{"empty key", Source{Files: []string{file}, Set: []string{"=1"}, Separator: "."}, ErrInvalidOverride},
		{"through scalar", Source{Files: []string{file}, Set: []string{"a.b=1"}, Separator: "."}, conf.ErrInvalidKey},
		{"missing file", Source{Files: []string{dir + "/none.yaml"}, Separator: "."}, codec.ErrDecode},
		{"no files", Source{Separator: "."}, ErrNoSource},
		{"bad stdin format", Source{Files: []string{"-"}, Stdin: "toml", Separator: "."}, codec.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.src.load(t.Context()); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
