package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/aconf/conf"
)

func TestGet_Run(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "app.yaml", `
host: localhost
db:
  port: 5432
  url: pg://${host}:${.port}
tags: [a, "${host}"]
`)

	tests := []struct {
		key  string
		want string
	}{
		{"host", "localhost\n"},
		{"db.port", "5432\n"},
		{"db.url", "pg://localhost:5432\n"},
		{"db", `{"port":5432,"url":"pg://localhost:5432"}` + "\n"},
		{"tags", `["a","localhost"]` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ctx, out := capture(t)

			g := Get{
				Key:    tt.key,
				Source: Source{Files: []string{file}, Separator: "."},
				Render: Render{Output: "json", Indent: 0},
			}

			if err := g.Run(ctx); err != nil {
				t.Fatal(err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGet_Missing(t *testing.T) {
	file := writeFile(t, t.TempDir(), "app.yaml", "host: x\n")
	ctx, _ := capture(t)

	g := Get{Key: "hots", Source: Source{Files: []string{file}, Separator: "."}}

	err := g.Run(ctx)
	if !errors.Is(err, conf.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestScalar(t *testing.T) {
	if got := scalar(nil); got != "" {
		t.Errorf("scalar(nil) = %q", got)
	}

	if got := scalar(1.5); got != "1.5" {
		t.Errorf("scalar(1.5) = %q", got)
	}
}
