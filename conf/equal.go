package conf

import "reflect"

// Equal reports whether a and b hold the same configuration value.
//
// Variables compare by their current value. Numbers compare by numeric
// value regardless of Go type, so int 1, int64 1, and float64 1.0 are equal.
// Nodes, string-keyed maps, and sequences compare element-wise.
func Equal(a, b any) bool {
	return equalDepth(a, b, 0)
}

func equalDepth(a, b any, depth int) bool {
	if depth > DefaultMaxDepth {
		return false
	}

	a, b = unwrap(a), unwrap(b)

	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			return x.equal(y)
		}

		return false
	}

	if m, ok := asMapping(a); ok {
		o, ok := asMapping(b)
		if !ok || m.len() != o.len() {
			return false
		}

		same := true

		m.each(func(key string, v any) bool {
			w, found := o.lookup(key)
			same = found && equalDepth(v, w, depth+1)

			return same
		})

		return same
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if isSequence(av) && isSequence(bv) {
		if av.Len() != bv.Len() {
			return false
		}

		for i := range av.Len() {
			if !equalDepth(av.Index(i).Interface(), bv.Index(i).Interface(), depth+1) {
				return false
			}
		}

		return true
	}

	return reflect.DeepEqual(a, b)
}

// unwrap returns the current value of a Variable, or v itself.
func unwrap(v any) any {
	if box, ok := v.(*Variable); ok {
		return box.Value()
	}

	return v
}

func isSequence(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

// number is a numeric value normalized for cross-type comparison.
type number struct {
	i     int64
	u     uint64
	f     float64
	class byte // 'i', 'u', or 'f'
}

func numeric(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return number{}, false
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{i: rv.Int(), class: 'i'}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{u: rv.Uint(), class: 'u'}, true
	case reflect.Float32, reflect.Float64:
		return number{f: rv.Float(), class: 'f'}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch n.class {
	case 'i':
		return float64(n.i)
	case 'u':
		return float64(n.u)
	default:
		return n.f
	}
}

func (n number) equal(o number) bool {
	switch {
	case n.class == 'i' && o.class == 'i':
		return n.i == o.i
	case n.class == 'u' && o.class == 'u':
		return n.u == o.u
	case n.class == 'i' && o.class == 'u':
		return n.i >= 0 && uint64(n.i) == o.u
	case n.class == 'u' && o.class == 'i':
		return o.i >= 0 && uint64(o.i) == n.u
	default:
		return n.float() == o.float()
	}
}
