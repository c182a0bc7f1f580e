package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/aconf/conf"
)

func TestEval_Run(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "app.yaml", `
name: svc
db:
  host: localhost
  port: 5432
  url: pg://${.host}:${.port}/${name}
port: ${db.port}
`)

	ctx, out := capture(t)

	e := Eval{
		Source: Source{Files: []string{file}, Separator: "."},
		Render: Render{Output: "json", Indent: 0},
	}

	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}

	want := `{"name":"svc","db":{"host":"localhost","port":5432,"url":"pg://localhost:5432/svc"},"port":5432}` + "\n"
	if got := out.String(); got != want {
		t.Errorf("output:\nwant: %s\ngot:  %s", want, got)
	}
}

func TestEval_OverrideBeforeInterpolation(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "app.yaml", "host: a\nurl: http://${host}/\n")

	ctx, out := capture(t)

	e := Eval{
		Source: Source{Files: []string{file}, Set: []string{"host=b"}, Separator: "."},
		Render: Render{Output: "json", Indent: 2},
	}

	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), `"url": "http://b/"`) {
		t.Errorf("output:\n%s", out)
	}
}

func TestEval_UnsafeEval(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "app.yaml", "size: 512\nblocks: ${size} / 64\n")

	ctx, out := capture(t)

	e := Eval{
		Source: Source{Files: []string{file}, Separator: "."},
		Interp: Interp{UnsafeEval: true},
		Render: Render{Output: "json", Indent: 2},
	}

	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), `"blocks": 8`) {
		t.Errorf("output:\n%s", out)
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"cycle", "a: ${b}\nb: ${a}\n", conf.ErrCircularReference},
		{"unresolved", "a: ${missing}\n", conf.ErrUnresolvedReference},
		{"self", "a: x${a}\n", conf.ErrSelfReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeFile(t, t.TempDir(), "app.yaml", tt.src)
			ctx, out := capture(t)

			e := Eval{Source: Source{Files: []string{file}, Separator: "."}}

			if err := e.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			if out.Len() != 0 {
				t.Errorf("expected no output on failure, got %q", out)
			}
		})
	}
}

func TestInterp_Options(t *testing.T) {
	if n := len(Interp{}.interpolateOptions()); n != 0 {
		t.Errorf("expected no options, got %d", n)
	}

	if n := len(Interp{UseVariable: true, UnsafeEval: true}.interpolateOptions()); n != 2 {
		t.Errorf("expected two options, got %d", n)
	}
}
