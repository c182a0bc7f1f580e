package conf

import (
	"cmp"
	"iter"
	"maps"
	"reflect"
	"slices"
)

// mapping is a read-only view over the mapping-like values the set algebra
// and equality accept.
type mapping interface {
	len() int
	lookup(key string) (any, bool)
	each(fn func(key string, value any) bool)
}

// asMapping returns a mapping view of v if it is a *Node or a map with
// string keys. Go maps are visited in sorted key order.
func asMapping(v any) (mapping, bool) {
	switch m := v.(type) {
	case *Node:
		if m == nil {
			return nil, false
		}

		return nodeMapping{m}, true

	case map[string]any:
		return stringMap(m), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return reflectMap{rv}, true
	}

	return nil, false
}

// pairs adapts a mapping to an ordered iterator.
func pairs(m mapping) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		m.each(yield)
	}
}

type nodeMapping struct{ n *Node }

func (m nodeMapping) len() int { return len(m.n.keys) }

func (m nodeMapping) lookup(key string) (any, bool) {
	v, ok := m.n.values[key]

	return v, ok
}

func (m nodeMapping) each(fn func(string, any) bool) {
	for _, key := range m.n.keys {
		if !fn(key, m.n.values[key]) {
			return
		}
	}
}

type stringMap map[string]any

func (m stringMap) len() int { return len(m) }

func (m stringMap) lookup(key string) (any, bool) {
	v, ok := m[key]

	return v, ok
}

func (m stringMap) each(fn func(string, any) bool) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if !fn(key, m[key]) {
			return
		}
	}
}

type reflectMap struct{ v reflect.Value }

func (m reflectMap) len() int { return m.v.Len() }

func (m reflectMap) lookup(key string) (any, bool) {
	v := m.v.MapIndex(reflect.ValueOf(key).Convert(m.v.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}

	return v.Interface(), true
}

func (m reflectMap) each(fn func(string, any) bool) {
	keys := m.v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(a.String(), b.String())
	})

	for _, k := range keys {
		if !fn(k.String(), m.v.MapIndex(k).Interface()) {
			return
		}
	}
}
