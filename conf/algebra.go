package conf

import (
	"fmt"
	"iter"
	"log/slog"
)

// Pair is one entry of an ordered mapping operand.
type Pair struct {
	Key   string
	Value any
}

// Merge copies the entries of src into dest.
//
// Where dest and src both hold a mapping under the same key, the two are
// merged recursively. Otherwise the value from src is assigned with
// [Node.Set] when overwrite is true or dest lacks the key, and the existing
// value is kept when it is not. Plain maps assigned this way become child
// nodes.
//
// The Outcome is a fallback if src is neither a *Node nor a
// map[string]any; [Node.Merge] accepts more operands. A failure part way
// through leaves dest partially merged.
func Merge(dest *Node, src any, overwrite bool) (Outcome[*Node], error) {
	if !fastOperand(src) {
		return Fallback[*Node](), nil
	}

	m, _ := asMapping(src)
	if err := dest.mergeMapping(m, overwrite, 0); err != nil {
		return Fallback[*Node](), err
	}

	return Handled(dest), nil
}

// Intersect returns a new Node holding the entries of a that b holds with
// an equal value. The result has the options and schema of a, if a is a
// Node.
//
// The Outcome is a fallback if either operand is neither a *Node nor a
// map[string]any.
func Intersect(a, b any, opts ...AlgebraOption) (Outcome[*Node], error) {
	if !fastOperand(a) || !fastOperand(b) {
		return Fallback[*Node](), nil
	}

	x, _ := asMapping(a)
	y, _ := asMapping(b)

	out, err := intersect(prototype(a), x, y, algebraOf(opts), 0)
	if err != nil {
		return Fallback[*Node](), err
	}

	return Handled(out), nil
}

// Difference returns a new Node holding the entries of b that a lacks or
// holds with a different value. The result has the options and schema of
// a, if a is a Node.
//
// The Outcome is a fallback under the same conditions as [Intersect].
func Difference(a, b any, opts ...AlgebraOption) (Outcome[*Node], error) {
	if !fastOperand(a) || !fastOperand(b) {
		return Fallback[*Node](), nil
	}

	x, _ := asMapping(a)
	y, _ := asMapping(b)

	out, err := difference(prototype(a), x, y, algebraOf(opts), 0)
	if err != nil {
		return Fallback[*Node](), err
	}

	return Handled(out), nil
}

// Merge copies the entries of src into n, replacing existing values.
// src may be a *Node, any map with string keys, a []Pair, or an
// iter.Seq2[string, any].
func (n *Node) Merge(src any) error {
	return n.merge(src, true)
}

// MergeDefaults copies the entries of src that n lacks, keeping existing
// values. It accepts the same operands as [Node.Merge].
func (n *Node) MergeDefaults(src any) error {
	return n.merge(src, false)
}

func (n *Node) merge(src any, overwrite bool) error {
	out, err := Merge(n, src, overwrite)
	if err != nil || !out.IsFallback() {
		return err
	}

	m, err := operand(src)
	if err != nil {
		return err
	}

	return n.mergeMapping(m, overwrite, 0)
}

// Intersect returns the entries of n that other holds with an equal value.
// other may be any operand accepted by [Node.Merge].
func (n *Node) Intersect(other any, opts ...AlgebraOption) (*Node, error) {
	out, err := Intersect(n, other, opts...)
	if err != nil {
		return nil, err
	}

	if v, ok := out.Value(); ok {
		return v, nil
	}

	m, err := operand(other)
	if err != nil {
		return nil, err
	}

	return intersect(n, nodeMapping{n}, m, algebraOf(opts), 0)
}

// Difference returns the entries of other that n lacks or holds with a
// different value. other may be any operand accepted by [Node.Merge].
func (n *Node) Difference(other any, opts ...AlgebraOption) (*Node, error) {
	out, err := Difference(n, other, opts...)
	if err != nil {
		return nil, err
	}

	if v, ok := out.Value(); ok {
		return v, nil
	}

	m, err := operand(other)
	if err != nil {
		return nil, err
	}

	return difference(n, nodeMapping{n}, m, algebraOf(opts), 0)
}

// fastOperand reports whether v is a mapping the fast paths accept.
func fastOperand(v any) bool {
	switch m := v.(type) {
	case *Node:
		return m != nil
	case map[string]any:
		return true
	default:
		return false
	}
}

// operand returns a mapping view of any operand the general paths accept.
func operand(v any) (mapping, error) {
	if m, ok := asMapping(v); ok {
		return m, nil
	}

	switch s := v.(type) {
	case []Pair:
		return pairList(s), nil

	case iter.Seq2[string, any]:
		var list pairList
		for key, value := range s {
			list = append(list, Pair{Key: key, Value: value})
		}

		return list, nil
	}

	return nil, ErrInvalidOperand.
		Wrapf("%T is not a mapping", v).
		With(slog.String("type", fmt.Sprintf("%T", v)))
}

// prototype returns the Node whose options a fresh result inherits.
func prototype(v any) *Node {
	if n, ok := v.(*Node); ok && n != nil {
		return n
	}

	return New()
}

func algebraOf(opts []AlgebraOption) algebra {
	var a algebra
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}

	return a
}

// pairList is a mapping over ordered pairs. A repeated key reads as its
// last value.
type pairList []Pair

func (l pairList) len() int { return len(l) }

func (l pairList) lookup(key string) (any, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Key == key {
			return l[i].Value, true
		}
	}

	return nil, false
}

func (l pairList) each(fn func(string, any) bool) {
	for _, p := range l {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

func (n *Node) mergeMapping(m mapping, overwrite bool, depth int) error {
	var err error

	m.each(func(key string, value any) bool {
		err = n.mergeValue(key, value, overwrite, depth)

		return err == nil
	})

	return err
}

// mergeValue merges one entry into n.
func (n *Node) mergeValue(key string, value any, overwrite bool, depth int) error {
	if depth > n.opts.maxDepth {
		return ErrMaxDepthExceeded.
			Wrapf("merging %q", key).
			With(slog.String("key", key), slog.Int("depth", depth))
	}

	if err := n.validKey(key); err != nil {
		return err
	}

	owner, leaf, err := n.parent(key, true)
	if err != nil {
		return err
	}

	existing, exists := owner.values[leaf]

	if _, ok := existing.(*Variable); ok {
		if exists && !overwrite {
			return nil
		}

		_, err := owner.putLocal(leaf, value)

		return err
	}

	src, isMapping := asMapping(value)
	if !isMapping {
		if exists && !overwrite {
			return nil
		}

		_, err := owner.putLocal(leaf, value)

		return err
	}

	if _, ok := existing.(*Node); !ok {
		if _, ok := asMapping(existing); ok {
			if existing, err = owner.convertMapping(leaf, existing, depth); err != nil {
				return err
			}

			owner.store(leaf, existing)
		}
	}

	if child, ok := existing.(*Node); ok {
		return child.mergeMapping(src, overwrite, depth+1)
	}

	if exists && !overwrite {
		return nil
	}

	if shape, ok := owner.shape(leaf); ok {
		if _, ok := shape.(structShape); !ok {
			_, err := owner.putLocal(leaf, value)

			return err
		}
	}

	child := owner.newChild(leaf)
	if err := child.mergeMapping(src, true, depth+1); err != nil {
		return err
	}

	owner.store(leaf, child)

	return nil
}

func intersect(proto *Node, a, b mapping, alg algebra, depth int) (*Node, error) {
	if depth > proto.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.With(slog.Int("depth", depth))
	}

	out := proto.empty()

	var err error

	a.each(func(key string, x any) bool {
		y, ok := b.lookup(key)
		if !ok {
			return true
		}

		if alg.recursive {
			if cx, cy, ok := mappingPair(x, y); ok {
				var sub *Node

				sub, err = intersect(proto.childProto(x), cx, cy, alg, depth+1)
				if err == nil && sub.Len() > 0 {
					_, err = out.putLocal(key, sub)
				}

				return err == nil
			}
		}

		if Equal(x, y) {
			_, err = out.putLocal(key, x)
		}

		return err == nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func difference(proto *Node, a, b mapping, alg algebra, depth int) (*Node, error) {
	if depth > proto.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.With(slog.Int("depth", depth))
	}

	out := proto.empty()

	var err error

	b.each(func(key string, y any) bool {
		x, ok := a.lookup(key)
		if !ok {
			_, err = out.putLocal(key, y)

			return err == nil
		}

		if alg.recursive {
			if cx, cy, ok := mappingPair(x, y); ok {
				var sub *Node

				sub, err = difference(proto.childProto(x), cx, cy, alg, depth+1)
				if err == nil && sub.Len() > 0 {
					_, err = out.putLocal(key, sub)
				}

				return err == nil
			}
		}

		if !Equal(x, y) {
			_, err = out.putLocal(key, y)
		}

		return err == nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// mappingPair returns mapping views of x and y when x is a Node and y is
// any mapping.
func mappingPair(x, y any) (mapping, mapping, bool) {
	if _, ok := x.(*Node); !ok {
		return nil, nil, false
	}

	cx, ok := asMapping(x)
	if !ok {
		return nil, nil, false
	}

	cy, ok := asMapping(y)
	if !ok {
		return nil, nil, false
	}

	return cx, cy, true
}

// childProto returns the prototype for a nested result under a child node.
func (n *Node) childProto(child any) *Node {
	if c, ok := child.(*Node); ok {
		return c
	}

	return n
}
