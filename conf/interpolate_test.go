package conf

import (
	"errors"
	"strings"
	"testing"
)

func build(t *testing.T, pairs ...any) *Node {
	t.Helper()

	n := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := n.Set(pairs[i].(string), pairs[i+1]); err != nil {
			t.Fatalf("Set(%v): %v", pairs[i], err)
		}
	}

	return n
}

func TestInterpolate_WholeValueKeepsType(t *testing.T) {
	n := build(t, "a", 5, "b", "${a}")

	out, err := Interpolate(n, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if done, ok := out.Value(); !ok || !done {
		t.Fatalf("expected handled outcome, got %v", out)
	}

	if got := mustGet(t, n, "b"); got != 5 {
		t.Errorf("b = %#v, want int 5", got)
	}
}

func TestInterpolate_Template(t *testing.T) {
	n := build(t, "a", 5, "b", "val-${a}", "c", "${a}.${b}")

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "b"); got != "val-5" {
		t.Errorf("b = %#v", got)
	}

	if got := mustGet(t, n, "c"); got != "5.val-5" {
		t.Errorf("c = %#v", got)
	}
}

func TestInterpolate_Idempotent(t *testing.T) {
	n := build(t, "a", 1, "b", "${a}", "c", "x-${b}", "home", "$HOME")

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	before := n.Clone()

	out, err := Interpolate(n, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if done, ok := out.Value(); !ok || !done {
		t.Errorf("expected handled outcome on second run, got %v", out)
	}

	if !n.Equal(before) {
		t.Errorf("second run changed %v to %v", before, n)
	}

	if got := mustGet(t, n, "home"); got != "$HOME" {
		t.Errorf("expected text without placeholders untouched, got %v", got)
	}
}

func TestInterpolate_SelfReference(t *testing.T) {
	n := build(t, "a", 1, "x", "${x}")

	err := n.Interpolate()
	if !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected ErrSelfReference, got %v", err)
	}

	if v, _ := WrapError(err).Attr("key"); v.String() != "x" {
		t.Errorf("key attribute = %q", v.String())
	}

	if !strings.Contains(err.Error(), "cannot interpolate x to itself") {
		t.Errorf("message = %q", err)
	}
}

func TestInterpolate_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		pairs []any
		path  string
	}{
		{"pair", []any{"a", "${b}", "b", "${a}"}, "a->b->a"},
		{"ring", []any{"a", "${b}", "b", "${c}", "c", "${d}", "d", "${a}"}, "a->b->c->d->a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := build(t, tt.pairs...)

			err := n.Interpolate()
			if !errors.Is(err, ErrCircularReference) {
				t.Fatalf("expected ErrCircularReference, got %v", err)
			}

			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("message %q lacks path %q", err, tt.path)
			}

			if got := mustGet(t, n, "a"); got != "${b}" {
				t.Errorf("expected no substitution, a = %v", got)
			}
		})
	}
}

func TestInterpolate_Unresolved(t *testing.T) {
	n := build(t, "a", 1, "b", "${a}", "c", "${d}")

	err := n.Interpolate()
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}

	ee := WrapError(err)
	if v, _ := ee.Attr("key"); v.String() != "c" {
		t.Errorf("key attribute = %q", v.String())
	}

	if v, _ := ee.Attr("name"); v.String() != "d" {
		t.Errorf("name attribute = %q", v.String())
	}

	if !strings.Contains(err.Error(), "Node{") {
		t.Errorf("expected node representation in %q", err)
	}
}

func TestInterpolate_UseVariable(t *testing.T) {
	n := build(t, "a", 1, "b", "${a}", "c", "${a}.${b}")

	if err := n.Interpolate(UseVariable()); err != nil {
		t.Fatal(err)
	}

	a, b := mustGet(t, n, "a"), mustGet(t, n, "b")

	va, ok := a.(*Variable)
	if !ok {
		t.Fatalf("expected a wrapped in a variable, got %T", a)
	}

	if vb, ok := b.(*Variable); !ok || !vb.Same(va) {
		t.Fatalf("expected b to share a's variable, got %T", b)
	}

	if got := mustGet(t, n, "c"); got != "1.1" {
		t.Errorf("c = %#v", got)
	}

	_ = n.Set("a", 2)

	if got, _ := n.Value("b"); got != 2 {
		t.Errorf("b after update = %v, want 2", got)
	}

	if got := mustGet(t, n, "c"); got != "1.1" {
		t.Errorf("templates are not live, c = %v", got)
	}
}

func TestInterpolate_WithoutVariable(t *testing.T) {
	n := build(t, "a", 1, "b", "${a}", "c", "${b}")

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	_ = n.Set("a", 2)

	if got := mustGet(t, n, "b"); got != 1 {
		t.Errorf("b = %v, want 1", got)
	}

	if got := mustGet(t, n, "c"); got != 1 {
		t.Errorf("c = %v, want 1", got)
	}
}

func TestInterpolate_NestedFallsBack(t *testing.T) {
	n := build(t,
		"db.host", "localhost",
		"db.port", 5432,
		"db.url", "pg://${.host}:${.port}",
		"port", "${db.port}",
	)

	out, err := Interpolate(n, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if !out.IsFallback() {
		t.Fatal("expected fallback for a node with children")
	}

	if got := mustGet(t, n, "port"); got != "${db.port}" {
		t.Errorf("fallback must not mutate, port = %v", got)
	}

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "db.url"); got != "pg://localhost:5432" {
		t.Errorf("db.url = %#v", got)
	}

	if got := mustGet(t, n, "port"); got != 5432 {
		t.Errorf("port = %#v", got)
	}
}

func TestInterpolate_RelativeSelfReference(t *testing.T) {
	n := build(t, "db.host", "${.host}")

	if err := n.Interpolate(); !errors.Is(err, ErrSelfReference) {
		t.Errorf("expected ErrSelfReference, got %v", err)
	}
}

func TestInterpolate_DynamicName(t *testing.T) {
	n := build(t,
		"env", "prod",
		"hosts.prod", "p.example",
		"hosts.dev", "d.example",
		"host", "${hosts.${env}}",
		"url", "https://${hosts.${env}}/",
	)

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "host"); got != "p.example" {
		t.Errorf("host = %#v", got)
	}

	if got := mustGet(t, n, "url"); got != "https://p.example/" {
		t.Errorf("url = %#v", got)
	}
}

func TestInterpolate_DynamicTargetWithPlaceholders(t *testing.T) {
	n := build(t,
		"a", "${b.${c}}",
		"url", "v${b.${c}}",
		"b.x", "${d}",
		"c", "x",
		"d", 1,
	)

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "a"); got != 1 {
		t.Errorf("a = %#v, want int 1", got)
	}

	if got := mustGet(t, n, "url"); got != "v1" {
		t.Errorf("url = %#v", got)
	}

	if got := mustGet(t, n, "b.x"); got != 1 {
		t.Errorf("b.x = %#v", got)
	}
}

func TestInterpolate_DynamicCycle(t *testing.T) {
	n := build(t, "a", "${b.${c}}", "b.x", "${a}", "c", "x")

	err := n.Interpolate()
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("expected ErrCircularReference, got %v", err)
	}

	if !strings.Contains(err.Error(), "a->b.x->a") {
		t.Errorf("message %q lacks the cycle", err)
	}

	if got := mustGet(t, n, "a"); got != "${b.${c}}" {
		t.Errorf("a = %v", got)
	}
}

func TestInterpolate_DependencyOrder(t *testing.T) {
	n := build(t, "c", "${b}!", "b", "${a}?", "a", "x")

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "c"); got != "x?!" {
		t.Errorf("c = %#v", got)
	}
}

func TestInterpolate_Sequences(t *testing.T) {
	n := build(t,
		"a", 1,
		"list", []any{"${a}", "x-${a}", 3},
		"names", []string{"n${a}"},
		"env", map[string]any{"A": "${a}"},
	)

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "list"); !Equal(got, []any{1, "x-1", 3}) {
		t.Errorf("list = %#v", got)
	}

	if got := mustGet(t, n, "names"); !Equal(got, []string{"n1"}) {
		t.Errorf("names = %#v", got)
	}

	if got := mustGet(t, n, "env"); !Equal(got, map[string]any{"A": 1}) {
		t.Errorf("env = %#v", got)
	}
}

func TestInterpolate_UnsafeEval(t *testing.T) {
	n := build(t,
		"n", 512,
		"blocks", "${n} / 64",
		"name", "svc",
		"label", "${name}-suffix",
		"year", "2024",
		"date", "${year}-10-16",
	)

	if err := n.Interpolate(UnsafeEval()); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "blocks"); !Equal(got, 8) {
		t.Errorf("blocks = %#v", got)
	}

	if got := mustGet(t, n, "label"); got != "svc-suffix" {
		t.Errorf("label = %#v", got)
	}
	if got := mustGet(t, n, "date"); got != "2024-10-16" {
		t.Errorf("date = %#v", got)
	}
}

func TestInterpolate_CoercesResult(t *testing.T) {
	n := New(WithSchemaOf[serverSchema]())
	_ = n.Set("Name", "8080")
	_ = n.Set("port", "${Name}")

	if err := n.Interpolate(); err != nil {
		t.Fatal(err)
	}

	if got := mustGet(t, n, "port"); got != 8080 {
		t.Errorf("port = %#v", got)
	}
}
