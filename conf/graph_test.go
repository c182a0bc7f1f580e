package conf

import (
	"errors"
	"slices"
	"testing"
)

func TestGraph_SortPlacesReferencesFirst(t *testing.T) {
	g := newGraph()
	g.add("c", []string{"b", "a"})
	g.add("b", []string{"a"})
	g.add("d", []string{"c", "b", "c"})

	got, err := g.sort()
	if err != nil {
		t.Fatalf("sort: %v", err)
	}

	if want := []string{"b", "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("sort = %q, want %q", got, want)
	}

	if deps := g.deps["d"]; !slices.Equal(deps, []string{"c", "b"}) {
		t.Errorf("expected deduplicated dependencies, got %q", deps)
	}
}

func TestGraph_Leaves(t *testing.T) {
	g := newGraph()
	g.add("b", []string{"a"})
	g.add("c", []string{"b", "x", "a"})

	names, from := g.leaves()
	if want := []string{"a", "x"}; !slices.Equal(names, want) {
		t.Errorf("leaves = %q, want %q", names, want)
	}

	if from["a"] != "b" || from["x"] != "c" {
		t.Errorf("unexpected referencing keys: %v", from)
	}
}

func TestGraph_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		path  string
	}{
		{
			name:  "pair",
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			path:  "a->b->a",
		},
		{
			name:  "ring",
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			path:  "a->b->c->d->a",
		},
		{
			name:  "tail into cycle",
			edges: [][2]string{{"x", "a"}, {"a", "b"}, {"b", "a"}},
			path:  "a->b->a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph()
			for _, e := range tt.edges {
				g.add(e[0], []string{e[1]})
			}

			_, err := g.sort()
			if !errors.Is(err, ErrCircularReference) {
				t.Fatalf("expected ErrCircularReference, got %v", err)
			}

			if v, _ := WrapError(err).Attr("path"); v.String() != tt.path {
				t.Errorf("path = %q, want %q", v.String(), tt.path)
			}
		})
	}
}
