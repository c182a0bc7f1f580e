package conf

// Outcome is the result of a fast-path operation. It is either handled,
// carrying a value, or a fallback, meaning the input is outside what the
// fast path supports and a general implementation must complete the
// operation. Fallback is not an error; errors are returned separately.
type Outcome[T any] struct {
	value   T
	handled bool
}

// Handled returns an Outcome carrying v.
func Handled[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, handled: true}
}

// Fallback returns an Outcome requesting the general code path.
func Fallback[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Value returns the carried value and whether the Outcome was handled.
func (o Outcome[T]) Value() (T, bool) { return o.value, o.handled }

// IsFallback reports whether the general code path must take over.
func (o Outcome[T]) IsFallback() bool { return !o.handled }

// String returns "handled" or "fallback".
func (o Outcome[T]) String() string {
	if o.handled {
		return "handled"
	}

	return "fallback"
}
