package conf

import (
	"log/slog"
	"slices"
	"strings"
)

// graph holds the references between keys whose values contain
// placeholders. It lives for one interpolation.
type graph struct {
	order []string            // keys with placeholders, in scan order
	deps  map[string][]string // key -> referenced names, deduplicated
}

func newGraph() *graph {
	return &graph{deps: make(map[string][]string)}
}

// add records that key references names.
func (g *graph) add(key string, names []string) {
	have, ok := g.deps[key]
	if !ok {
		g.order = append(g.order, key)
	}

	seen := make(map[string]struct{}, len(have)+len(names))
	for _, name := range have {
		seen[name] = struct{}{}
	}

	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		have = append(have, name)
	}

	g.deps[key] = have
}

// has reports whether name has placeholders of its own.
func (g *graph) has(name string) bool {
	_, ok := g.deps[name]

	return ok
}

// leaves returns every referenced name without placeholders of its own,
// mapped to the first key referencing it, in first-reference order.
func (g *graph) leaves() ([]string, map[string]string) {
	var order []string

	from := make(map[string]string)

	for _, key := range g.order {
		for _, name := range g.deps[key] {
			if g.has(name) {
				continue
			}

			if _, ok := from[name]; !ok {
				from[name] = key
				order = append(order, name)
			}
		}
	}

	return order, from
}

// sort returns the keys with placeholders ordered so that every key comes
// after the keys it references. A reference cycle fails with
// ErrCircularReference carrying the cycle as "a->b->a".
//
// The depth-first search keeps its own stack of frames, so long reference
// chains do not grow the call stack.
func (g *graph) sort() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	type frame struct {
		key  string
		next int
	}

	state := make(map[string]int, len(g.order))
	sorted := make([]string, 0, len(g.order))

	for _, root := range g.order {
		if state[root] != unvisited {
			continue
		}

		state[root] = visiting
		stack := []frame{{key: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.deps[top.key]

			if top.next == len(deps) {
				state[top.key] = done
				sorted = append(sorted, top.key)
				stack = stack[:len(stack)-1]

				continue
			}

			dep := deps[top.next]
			top.next++

			if !g.has(dep) {
				continue
			}

			switch state[dep] {
			case visiting:
				var cycle []string

				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i].key)
					if stack[i].key == dep {
						break
					}
				}

				slices.Reverse(cycle)
				path := strings.Join(append(cycle, dep), "->")

				return nil, ErrCircularReference.
					Wrapf("%s", path).
					With(slog.String("path", path))

			case unvisited:
				state[dep] = visiting
				stack = append(stack, frame{key: dep})
			}
		}
	}

	return sorted, nil
}
