package conf

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Shape converts values assigned to an annotated key.
type Shape interface {
	Convert(value any) (any, error)
	String() string
}

// Shaper is implemented by schema types that declare shapes beyond, or in
// place of, those derived from their struct fields. Shapes returned here
// replace field-derived shapes with the same key.
type Shaper interface {
	Shapes() map[string]Shape
}

// ShapeFunc adapts a conversion function to a named [Shape].
func ShapeFunc(name string, fn func(any) (any, error)) Shape {
	return funcShape{name: name, fn: fn}
}

type funcShape struct {
	name string
	fn   func(any) (any, error)
}

func (s funcShape) Convert(value any) (any, error) { return s.fn(value) }
func (s funcShape) String() string                  { return s.name }

// annotation is the memoized shape table of one schema type.
type annotation struct {
	once   sync.Once
	shapes map[string]Shape
	fields []field
}

// field locates the struct field backing a key.
type field struct {
	key   string
	index []int
}

// registry maps reflect.Type to *annotation.
var registry sync.Map

func annotationsFor(t reflect.Type) *annotation {
	v, _ := registry.LoadOrStore(t, &annotation{})
	a := v.(*annotation)
	a.once.Do(func() { a.derive(t) })

	return a
}

// Annotations returns the shapes declared by schema type t, keyed by entry
// key. The table is derived once per type and shared; callers must not
// modify it.
//
// Every exported field of a struct type contributes one key, named by its
// "conf" tag or else the field name. A tag of "-" omits the field, and
// untagged embedded structs contribute their own fields.
func Annotations(t reflect.Type) map[string]Shape {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil {
		return nil
	}

	return annotationsFor(t).shapes
}

func (a *annotation) derive(t reflect.Type) {
	a.shapes = make(map[string]Shape)

	if t.Kind() == reflect.Struct {
		a.collect(t, nil, 0)
	}

	if shaper, ok := reflect.New(t).Interface().(Shaper); ok {
		maps.Copy(a.shapes, shaper.Shapes())
	}
}

func (a *annotation) collect(t reflect.Type, index []int, depth int) {
	if depth > DefaultMaxDepth {
		return
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get("conf")
		if tag == "-" {
			continue
		}

		at := append(index[:len(index):len(index)], i)

		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			a.collect(f.Type, at, depth+1)

			continue
		}

		key := tag
		if key == "" {
			key = f.Name
		}

		if _, dup := a.shapes[key]; dup {
			continue
		}

		a.shapes[key] = ShapeOf(f.Type)
		a.fields = append(a.fields, field{key: key, index: at})
	}
}

// ShapeOf returns the built-in shape for values of type t. Struct types
// become nested nodes bound to t as their schema; every other type is
// decoded with weak typing, so "8" converts to int 8 and 1 to "1".
func ShapeOf(t reflect.Type) Shape {
	if t.Kind() == reflect.Struct {
		return structShape{typ: t}
	}

	return typeShape{typ: t}
}

// typeShape converts scalars, slices, and maps to a Go type.
type typeShape struct {
	typ reflect.Type
}

func (s typeShape) String() string { return s.typ.String() }

func (s typeShape) Convert(value any) (any, error) {
	switch value.(type) {
	case nil, *Node, *Variable:
		return value, nil
	}

	if reflect.TypeOf(value).AssignableTo(s.typ) {
		return value, nil
	}

	out := reflect.New(s.typ)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(value); err != nil {
		return nil, err
	}

	return out.Elem().Interface(), nil
}

// structShape converts mappings and struct values into a child Node bound
// to a struct schema.
type structShape struct {
	typ reflect.Type
}

func (s structShape) String() string { return s.typ.String() }

// Convert returns a new Node with schema s.typ holding the entries of value.
func (s structShape) Convert(value any) (any, error) {
	switch value.(type) {
	case nil, *Node, *Variable:
		return value, nil
	}

	n := New(WithSchema(s.typ))
	if err := s.fill(n, value); err != nil {
		return nil, err
	}

	return n, nil
}

// convertFor is Convert with the child inheriting the options of parent.
func (s structShape) convertFor(parent *Node, key string, value any) (any, error) {
	switch value.(type) {
	case nil, *Node, *Variable:
		return value, nil
	}

	child := parent.newChild(key)
	if err := s.fill(child, value); err != nil {
		return nil, err
	}

	return child, nil
}

func (s structShape) fill(n *Node, value any) error {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Struct && rv.Type() == s.typ {
		for _, f := range annotationsFor(s.typ).fields {
			if err := n.Set(f.key, rv.FieldByIndex(f.index).Interface()); err != nil {
				return err
			}
		}

		return nil
	}

	m, ok := asMapping(value)
	if !ok {
		return fmt.Errorf("cannot convert %T to %s", value, s.typ)
	}

	return n.mergeMapping(m, true, 1)
}

// shape returns the annotation for a direct key of n.
func (n *Node) shape(key string) (Shape, bool) {
	if n.opts.schema == nil {
		return nil, false
	}

	s, ok := annotationsFor(n.opts.schema).shapes[key]

	return s, ok
}

// coerce converts value to the shape annotated for key, if any. Strings
// holding placeholders are stored as given and converted when
// interpolation assigns their result.
func (n *Node) coerce(key string, value any) (any, error) {
	shape, ok := n.shape(key)
	if !ok {
		return value, nil
	}

	if s, ok := value.(string); ok && len(FindPlaceholders(s)) > 0 {
		return value, nil
	}

	var (
		out any
		err error
	)

	if s, ok := shape.(structShape); ok {
		out, err = s.convertFor(n, key, value)
	} else {
		out, err = shape.Convert(value)
	}

	if err != nil {
		return nil, ErrCoercion.Wrap(err).With(
			slog.String("key", key),
			slog.String("shape", shape.String()),
		)
	}

	return out, nil
}
