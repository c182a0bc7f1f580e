package conf

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Node is an ordered mapping from string keys to configuration values.
//
// Values are scalars, child nodes, shared [Variable] cells, or sequences and
// maps that are stored as given. Keys containing the separator (default ".")
// address child nodes, which are created on assignment as needed.
//
// Each key has exactly one slot: [Node.Get] and [Node.Attr] observe the same
// value for every name that is not reserved (see [IsReserved]). Names that
// are reserved, or absent from the mapping, live in a separate attribute
// store reached through [Node.Meta] and the attribute methods.
//
// A Node is not safe for concurrent mutation.
type Node struct {
	keys   []string
	values map[string]any
	meta   map[string]any
	opts   options
}

// Placement reports where [Node.Put] stored a value.
type Placement int

const (
	// Stored means the value now occupies the key's slot.
	Stored Placement = iota
	// Delegated means the slot held a Variable, which received the value.
	Delegated
)

// String returns "stored" or "delegated".
func (p Placement) String() string {
	if p == Delegated {
		return "delegated"
	}

	return "stored"
}

// New returns an empty Node.
func New(opts ...Option) *Node {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return &Node{
		values: make(map[string]any),
		meta:   make(map[string]any),
		opts:   o,
	}
}

// FromMap returns a Node holding the entries of src, converting nested maps
// into child nodes.
func FromMap(src map[string]any, opts ...Option) (*Node, error) {
	n := New(opts...)
	if err := n.Merge(src); err != nil {
		return nil, err
	}

	return n, nil
}

// empty returns a new Node with the receiver's options and no entries.
func (n *Node) empty() *Node {
	return &Node{
		values: make(map[string]any),
		meta:   make(map[string]any),
		opts:   n.opts,
	}
}

// Derive returns an empty Node with the options of n and no schema.
func (n *Node) Derive() *Node {
	child := n.empty()
	child.opts.schema = nil

	return child
}

// newChild returns an empty Node for the value under key, bound to the
// schema declared for that key if it is a struct.
func (n *Node) newChild(key string) *Node {
	child := n.Derive()

	if shape, ok := n.shape(key); ok {
		if s, ok := shape.(structShape); ok {
			child.opts.schema = s.typ
		}
	}

	return child
}

// Schema returns the struct type whose annotations govern coercion, or nil.
func (n *Node) Schema() reflect.Type { return n.opts.schema }

// Len returns the number of direct entries.
func (n *Node) Len() int { return len(n.keys) }

// Keys returns the direct keys in insertion order.
func (n *Node) Keys() []string { return slices.Clone(n.keys) }

// All returns an iterator over direct entries in insertion order. Variables
// are yielded as stored.
func (n *Node) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, key := range n.keys {
			if !yield(key, n.values[key]) {
				return
			}
		}
	}
}

// segments splits key into its nested path.
func (n *Node) segments(key string) []string {
	if n.opts.sep == "" {
		return []string{key}
	}

	return strings.Split(key, n.opts.sep)
}

// validKey rejects the empty key, the null sentinel, and empty segments.
func (n *Node) validKey(key string) error {
	if key == "" || key == NullKey {
		return ErrInvalidKey.Wrapf("%q", key)
	}

	for _, seg := range n.segments(key) {
		if seg == "" || seg == NullKey {
			return ErrInvalidKey.Wrapf("empty segment in %q", key)
		}
	}

	return nil
}

// lookup walks key through child nodes and plain maps.
func (n *Node) lookup(key string) (any, bool) {
	var cur any = n

	for _, seg := range n.segments(key) {
		switch c := cur.(type) {
		case *Node:
			v, ok := c.values[seg]
			if !ok {
				return nil, false
			}

			cur = v

		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}

			cur = v

		default:
			return nil, false
		}
	}

	return cur, true
}

// parent returns the node owning the final segment of key. With create set,
// missing intermediate nodes are added.
func (n *Node) parent(key string, create bool) (*Node, string, error) {
	segs := n.segments(key)
	cur := n

	for i, seg := range segs[:len(segs)-1] {
		v, ok := cur.values[seg]

		switch child := v.(type) {
		case *Node:
			cur = child

			continue

		case nil:
			if ok {
				break
			}

			if !create {
				return nil, "", n.notFound(key)
			}

			next := cur.newChild(seg)
			cur.store(seg, next)
			cur = next

			continue
		}

		prefix := strings.Join(segs[:i+1], n.opts.sep)

		return nil, "", ErrInvalidKey.
			Wrapf("cannot set %q: %q holds %s", key, prefix, describe(v)).
			With(slog.String("key", key), slog.String("prefix", prefix))
	}

	return cur, segs[len(segs)-1], nil
}

// notFound builds ErrKeyNotFound with the closest existing keys.
func (n *Node) notFound(key string) error {
	err := ErrKeyNotFound.With(slog.String("key", key))

	candidates := slices.Collect(n.flatKeys())

	var suggest []string

	for _, match := range fuzzy.Find(key, candidates) {
		suggest = append(suggest, match.Str)
		if len(suggest) == 3 {
			break
		}
	}

	if len(suggest) == 0 {
		return err.Wrapf("%q", key)
	}

	return err.
		With(slog.Any("suggest", suggest)).
		Wrapf("%q (did you mean %s?)", key, strings.Join(suggest, ", "))
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.lookup(key)

	return ok
}

// Get returns the value stored under key. A Variable is returned as the
// cell itself; use [Node.Value] for its current value.
func (n *Node) Get(key string) (any, error) {
	v, ok := n.lookup(key)
	if !ok {
		return nil, n.notFound(key)
	}

	return v, nil
}

// Value returns the value stored under key with any Variable unwrapped.
func (n *Node) Value(key string) (any, error) {
	v, err := n.Get(key)
	if err != nil {
		return nil, err
	}

	if box, ok := v.(*Variable); ok {
		return box.Get()
	}

	return v, nil
}

// Set assigns value to key. See [Node.Put].
func (n *Node) Set(key string, value any) error {
	_, err := n.Put(key, value)

	return err
}

// Put assigns value to key and reports where it went.
//
// If the slot already holds a [Variable], the value is handed to
// [Variable.Set] and the slot keeps the same cell ([Delegated]). Otherwise
// the value is coerced to the shape annotated for key, if any, and stored.
func (n *Node) Put(key string, value any) (Placement, error) {
	if err := n.validKey(key); err != nil {
		return Stored, err
	}

	owner, leaf, err := n.parent(key, true)
	if err != nil {
		return Stored, err
	}

	return owner.putLocal(leaf, value)
}

func (n *Node) putLocal(key string, value any) (Placement, error) {
	if box, ok := n.values[key].(*Variable); ok {
		if other, ok := value.(*Variable); ok && box.Same(other) {
			return Delegated, nil
		}

		if err := box.Set(value); err != nil {
			return Delegated, WrapError(err).With(slog.String("key", key))
		}

		n.opts.logger.Trace("set delegated to variable", slog.String("key", key))

		return Delegated, nil
	}

	value, err := n.coerce(key, value)
	if err != nil {
		return Stored, err
	}

	if n.opts.convert {
		if value, err = n.convertMapping(key, value, 0); err != nil {
			return Stored, err
		}
	}

	n.store(key, value)

	return Stored, nil
}

// store writes the slot, appending key to the order if new.
func (n *Node) store(key string, value any) {
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}

	n.values[key] = value
}

// convertMapping turns a plain map into a child node.
func (n *Node) convertMapping(key string, value any, depth int) (any, error) {
	if _, ok := value.(*Node); ok {
		return value, nil
	}

	m, ok := asMapping(value)
	if !ok {
		return value, nil
	}

	if depth >= n.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.With(slog.String("key", key))
	}

	child := n.newChild(key)
	for k, v := range pairs(m) {
		if err := child.mergeValue(k, v, true, depth+1); err != nil {
			return nil, err
		}
	}

	return child, nil
}

// Delete removes key.
func (n *Node) Delete(key string) error {
	if err := n.validKey(key); err != nil {
		return err
	}

	owner, leaf, err := n.parent(key, false)
	if err != nil {
		return err
	}

	if _, ok := owner.values[leaf]; !ok {
		return n.notFound(key)
	}

	owner.remove(leaf)

	return nil
}

func (n *Node) remove(key string) {
	delete(n.values, key)

	if i := slices.Index(n.keys, key); i >= 0 {
		n.keys = slices.Delete(n.keys, i, i+1)
	}
}

// AllItems returns an iterator over every leaf entry, descending into child
// nodes and joining keys with the separator. Variables are yielded as
// stored.
func (n *Node) AllItems() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		n.walk("", 0, yield)
	}
}

func (n *Node) walk(prefix string, depth int, yield func(string, any) bool) bool {
	if depth > n.opts.maxDepth {
		return true
	}

	for _, key := range n.keys {
		full := key
		if prefix != "" {
			full = prefix + n.opts.sep + key
		}

		if child, ok := n.values[key].(*Node); ok && child.Len() > 0 && n.opts.sep != "" {
			if !child.walk(full, depth+1, yield) {
				return false
			}

			continue
		}

		if !yield(full, n.values[key]) {
			return false
		}
	}

	return true
}

// flatKeys returns the keys of [Node.AllItems].
func (n *Node) flatKeys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range n.AllItems() {
			if !yield(key) {
				return
			}
		}
	}
}

// AllKeys returns every leaf key in dotted form.
func (n *Node) AllKeys() []string {
	return slices.Collect(n.flatKeys())
}

// Equal reports whether other holds the same entries as n, by value.
// other may be a *Node or a map with string keys.
func (n *Node) Equal(other any) bool {
	return Equal(n, other)
}

// Clone returns a deep copy of n. Child nodes, slices, and maps are copied;
// Variables remain shared with the original.
func (n *Node) Clone() *Node {
	return cloneValue(n, 0).(*Node)
}

func cloneValue(v any, depth int) any {
	if depth > DefaultMaxDepth {
		return v
	}

	switch x := v.(type) {
	case *Node:
		c := x.empty()
		c.keys = slices.Clone(x.keys)
		c.meta = maps.Clone(x.meta)

		for key, value := range x.values {
			c.values[key] = cloneValue(value, depth+1)
		}

		return c

	case map[string]any:
		c := make(map[string]any, len(x))
		for key, value := range x {
			c[key] = cloneValue(value, depth+1)
		}

		return c

	case []any:
		c := make([]any, len(x))
		for i, value := range x {
			c[i] = cloneValue(value, depth+1)
		}

		return c

	default:
		return v
	}
}

// ToMap returns the entries as plain maps, with child nodes converted and
// Variables replaced by their current values.
func (n *Node) ToMap() map[string]any {
	return plain(n, 0).(map[string]any)
}

// plain converts nodes and Variables inside v into plain Go values.
func plain(v any, depth int) any {
	if depth > DefaultMaxDepth {
		return v
	}

	switch x := unwrap(v).(type) {
	case *Node:
		m := make(map[string]any, len(x.keys))
		for _, key := range x.keys {
			m[key] = plain(x.values[key], depth+1)
		}

		return m

	case map[string]any:
		m := make(map[string]any, len(x))
		for key, value := range x {
			m[key] = plain(value, depth+1)
		}

		return m

	case []any:
		s := make([]any, len(x))
		for i, value := range x {
			s[i] = plain(value, depth+1)
		}

		return s

	default:
		return x
	}
}

// Validate checks every Variable in the tree against its constraints and
// returns all failures joined.
func (n *Node) Validate() error {
	var errs []error

	for key, value := range n.AllItems() {
		box, ok := value.(*Variable)
		if !ok {
			continue
		}

		if err := box.Validate(); err != nil {
			errs = append(errs, WrapError(err).With(slog.String("key", key)))
		}
	}

	return errors.Join(errs...)
}

// String returns a compact representation of the entries, used in error
// messages.
func (n *Node) String() string {
	var sb strings.Builder

	n.format(&sb, 0)

	return sb.String()
}

func (n *Node) format(sb *strings.Builder, depth int) {
	sb.WriteString("Node{")

	for i, key := range n.keys {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(key)
		sb.WriteString(": ")

		switch v := n.values[key].(type) {
		case *Node:
			if depth < n.opts.maxDepth {
				v.format(sb, depth+1)
			} else {
				sb.WriteString("Node{...}")
			}

		default:
			sb.WriteString(describe(v))
		}
	}

	sb.WriteByte('}')
}

// describe formats a value for messages, quoting strings.
func describe(v any) string {
	switch x := unwrap(v).(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case *Node:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
