package conf

import (
	"reflect"

	"github.com/ardnew/aconf/log"
)

const (
	// DefaultMaxDepth bounds recursion over nested nodes.
	DefaultMaxDepth = 100
	// DefaultSeparator joins the segments of a nested key.
	DefaultSeparator = "."
)

// options configure a Node. Child nodes created by the store inherit them,
// except for the schema, which comes from the parent's annotations.
type options struct {
	logger   log.Logger
	schema   reflect.Type
	sep      string
	maxDepth int
	convert  bool
}

func defaultOptions() options {
	return options{
		sep:      DefaultSeparator,
		maxDepth: DefaultMaxDepth,
	}
}

// Option configures a Node.
type Option func(*options)

// WithSchema binds the node to the annotations declared by a struct type.
// Values assigned to annotated keys are coerced to the declared shape.
// Pointer types are dereferenced.
func WithSchema(t reflect.Type) Option {
	return func(o *options) {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}

		o.schema = t
	}
}

// WithSchemaOf is [WithSchema] for the type parameter T.
func WithSchemaOf[T any]() Option {
	return WithSchema(reflect.TypeFor[T]())
}

// WithLogger sets the structured logger for trace-level diagnostics.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth sets the maximum nesting depth for recursive operations.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithSeparator sets the string that splits keys into nested segments.
// An empty separator makes every key flat.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.sep = sep
	}
}

// WithConvertMapping controls whether plain maps assigned with Set are
// converted into child nodes. Merge always converts.
func WithConvertMapping(convert bool) Option {
	return func(o *options) {
		o.convert = convert
	}
}

// InterpolateOption configures [Node.Interpolate].
type InterpolateOption func(*interpolation)

type interpolation struct {
	useVariable bool
	unsafeEval  bool
}

// UseVariable wraps every referenced leaf in a [Variable] written back under
// its own key, so later assignments to that key are seen by every value
// that referenced it.
func UseVariable() InterpolateOption {
	return func(i *interpolation) { i.useVariable = true }
}

// UnsafeEval evaluates each substituted string as a literal expression,
// such as "512 / 64", keeping the text when it is not one.
//
// Arithmetic applies to any text made of number literals, so "8-1" becomes
// 7. Dates like "2024-10-16" and zero-padded numbers like "10-05" are kept
// as text.
func UnsafeEval() InterpolateOption {
	return func(i *interpolation) { i.unsafeEval = true }
}

// AlgebraOption configures [Node.Intersect] and [Node.Difference].
type AlgebraOption func(*algebra)

type algebra struct {
	recursive bool
}

// Recursive compares nested nodes key by key instead of as whole values.
// Nested results that come out empty are omitted.
func Recursive() AlgebraOption {
	return func(a *algebra) { a.recursive = true }
}
