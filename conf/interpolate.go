package conf

import (
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// Interpolate resolves the "${name}" placeholders in the direct string
// values of n, rewriting them in place.
//
// A value that is exactly one placeholder is replaced by the referenced
// value itself, keeping its type. Any other value has its "$" sigils
// removed and each "{name}" token replaced by the referenced value's text.
// A name starting with "." is relative to the key holding it, so ".port"
// under "db.url" refers to "db.port".
//
// With useVariable, each referenced key that holds no placeholders is
// first replaced by a [Variable] holding its value, so every value that
// resolved to it shares the cell. With unsafeEval, each string result is
// evaluated as a literal expression.
//
// The Outcome is a fallback, with n untouched, if any direct value is a
// slice, array, map, or Node; [Node.Interpolate] handles those.
func Interpolate(n *Node, useVariable, unsafeEval bool) (Outcome[bool], error) {
	for key, value := range n.All() {
		if nested(value) {
			n.opts.logger.Trace("interpolate fallback", slog.String("key", key))

			return Fallback[bool](), nil
		}
	}

	e := interpolator{
		node:        n,
		useVariable: useVariable,
		unsafeEval:  unsafeEval,
	}

	if err := e.run(n.All()); err != nil {
		return Fallback[bool](), err
	}

	return Handled(true), nil
}

// interpolateGeneric resolves placeholders anywhere in the tree: in nested
// nodes, addressed by their dotted keys, and in the string elements of
// slices and maps.
func interpolateGeneric(n *Node, useVariable, unsafeEval bool) error {
	e := interpolator{
		node:        n,
		useVariable: useVariable,
		unsafeEval:  unsafeEval,
	}

	return e.run(n.AllItems())
}

// Interpolate resolves placeholders throughout the tree. See the
// package-level [Interpolate] for the substitution rules. Running it again
// on a resolved tree changes nothing.
func (n *Node) Interpolate(opts ...InterpolateOption) error {
	var cfg interpolation
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out, err := Interpolate(n, cfg.useVariable, cfg.unsafeEval)
	if err != nil {
		return err
	}

	if out.IsFallback() {
		return interpolateGeneric(n, cfg.useVariable, cfg.unsafeEval)
	}

	return nil
}

// nested reports whether v is a container the fast path does not enter.
func nested(v any) bool {
	if _, ok := v.(*Node); ok {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

type interpolator struct {
	node        *Node
	useVariable bool
	unsafeEval  bool

	pending  map[string]bool // keys with placeholders not yet rewritten
	visiting []string        // keys being rewritten, outermost first
	err      error           // failure raised inside a lookup
}

func (e *interpolator) run(entries iter.Seq2[string, any]) error {
	g := newGraph()

	for key, value := range entries {
		for _, text := range texts(value) {
			if err := e.record(g, key, text); err != nil {
				return err
			}
		}
	}

	if len(g.order) == 0 {
		return nil
	}

	sorted, err := g.sort()
	if err != nil {
		return err
	}

	if err := e.prepare(g); err != nil {
		return err
	}

	e.node.opts.logger.Trace("interpolate", slog.Any("order", sorted))

	e.pending = make(map[string]bool, len(sorted))
	for _, key := range sorted {
		e.pending[key] = true
	}

	for _, key := range sorted {
		if err := e.settle(key); err != nil {
			return err
		}
	}

	return nil
}

// settle rewrites key if it is still pending. Keys reached only through a
// dynamic name are not ordered by the graph, so a lookup may settle one
// early; visiting catches the cycles this can close.
func (e *interpolator) settle(key string) error {
	if !e.pending[key] {
		return nil
	}

	if i := slices.Index(e.visiting, key); i >= 0 {
		path := strings.Join(append(slices.Clone(e.visiting[i:]), key), "->")

		return ErrCircularReference.
			Wrapf("%s", path).
			With(slog.String("path", path))
	}

	e.visiting = append(e.visiting, key)
	defer func() { e.visiting = e.visiting[:len(e.visiting)-1] }()

	value, _ := e.node.lookup(key)

	resolved, err := e.rewrite(key, value)
	if err != nil {
		return err
	}

	if err := e.node.Set(key, resolved); err != nil {
		return err
	}

	delete(e.pending, key)

	e.node.opts.logger.Trace("interpolated", slog.String("key", key), slog.Any("value", resolved))

	return nil
}

// record adds the placeholders of text, held under key, to g.
func (e *interpolator) record(g *graph, key, text string) error {
	names := FindPlaceholders(text)
	if len(names) == 0 {
		return nil
	}

	static := names[:0:0]

	for _, name := range names {
		if isDynamic(name) {
			continue
		}

		name = e.absolute(key, name)
		if name == key {
			return ErrSelfReference.
				Wrapf("cannot interpolate %s to itself", key).
				With(slog.String("key", key))
		}

		static = append(static, name)
	}

	g.add(key, static)

	return nil
}

// absolute resolves a name relative to key when it starts with ".".
func (e *interpolator) absolute(key, name string) string {
	if !strings.HasPrefix(name, ".") {
		return name
	}

	prefix := key
	if sep := e.node.opts.sep; sep != "" {
		if i := strings.LastIndex(key, sep); i >= 0 {
			prefix = key[:i]
		}
	}

	return prefix + name
}

// prepare checks that every referenced key without placeholders exists,
// wrapping it in a Variable if requested.
func (e *interpolator) prepare(g *graph) error {
	names, from := g.leaves()

	for _, name := range names {
		value, ok := e.node.lookup(name)
		if !ok {
			return ErrUnresolvedReference.
				Wrapf("%s is not found in %s", name, e.node).
				With(slog.String("key", from[name]), slog.String("name", name))
		}

		if !e.useVariable {
			continue
		}

		switch value.(type) {
		case *Variable, *Node:
			continue
		}

		if _, _, err := e.node.parent(name, false); err != nil {
			continue
		}

		if _, err := e.node.Put(name, NewVariable(value)); err != nil {
			return err
		}
	}

	return nil
}

// lookup returns the value of name as seen from key, settling name first
// if it still holds placeholders.
func (e *interpolator) lookup(key string) func(string) (any, bool) {
	return func(name string) (any, bool) {
		name = e.absolute(key, name)

		if err := e.settle(name); err != nil {
			e.err = err

			return nil, false
		}

		return e.node.lookup(name)
	}
}

// rewrite returns value with every string in it resolved.
func (e *interpolator) rewrite(key string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.resolve(key, v)

	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				out[i] = elem

				continue
			}

			r, err := e.resolve(key, s)
			if err != nil {
				return nil, err
			}

			out[i] = r
		}

		return out, nil

	case []string:
		out := make([]string, len(v))
		for i, elem := range v {
			r, err := e.resolve(key, elem)
			if err != nil {
				return nil, err
			}

			out[i] = stringify(r)
		}

		return out, nil

	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			s, ok := elem.(string)
			if !ok {
				out[k] = elem

				continue
			}

			r, err := e.resolve(key, s)
			if err != nil {
				return nil, err
			}

			out[k] = r
		}

		return out, nil

	case map[string]string:
		out := make(map[string]string, len(v))
		for k, elem := range v {
			r, err := e.resolve(key, elem)
			if err != nil {
				return nil, err
			}

			out[k] = stringify(r)
		}

		return out, nil

	default:
		return value, nil
	}
}

// resolve substitutes the placeholders of one string held under key.
func (e *interpolator) resolve(key, text string) (any, error) {
	if !strings.Contains(text, openToken) {
		return text, nil
	}

	var (
		out any
		err error
	)

	if inner, ok := wholePlaceholder(text); ok {
		out, err = e.whole(key, inner)
	} else {
		out, err = substitute(strings.ReplaceAll(text, "$", ""), e.lookup(key))
	}

	if err != nil {
		if e.err != nil {
			err, e.err = e.err, nil

			return nil, err
		}

		return nil, e.unresolved(key, err)
	}

	if s, ok := out.(string); ok && e.unsafeEval {
		return evalLiteral(s)
	}

	return out, nil
}

// whole returns the value referenced by the single placeholder inner.
func (e *interpolator) whole(key, inner string) (any, error) {
	name := inner

	if isDynamic(inner) {
		var err error

		name, err = substitute(strings.ReplaceAll(inner, "$", ""), e.lookup(key))
		if err != nil {
			return nil, err
		}
	}

	value, ok := e.lookup(key)(name)
	if !ok {
		return nil, ErrUnresolvedReference.
			Wrapf("%s is not found", name).
			With(slog.String("name", name))
	}

	return value, nil
}

// unresolved adds the referencing key and the node to a lookup failure.
func (e *interpolator) unresolved(key string, err error) error {
	ee := WrapError(err)
	if !ee.Is(ErrUnresolvedReference) {
		return err
	}

	name, _ := ee.Attr("name")

	return ErrUnresolvedReference.
		Wrapf("%s is not found in %s", name, e.node).
		With(slog.String("key", key), slog.String("name", name.String()))
}

// texts returns the strings of value that may hold placeholders.
func texts(value any) []string {
	var out []string

	add := func(s string) {
		if strings.Contains(s, "$") {
			out = append(out, s)
		}
	}

	switch v := value.(type) {
	case string:
		add(v)

	case []any:
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				add(s)
			}
		}

	case []string:
		for _, s := range v {
			add(s)
		}

	case map[string]any:
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				add(s)
			}
		}

	case map[string]string:
		for _, s := range v {
			add(s)
		}
	}

	return out
}
