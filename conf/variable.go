package conf

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

type null struct{}

func (null) String() string { return "<null>" }

// Null is the value of a [Variable] that has never been set.
var Null = null{}

// Variable is a validated value cell that may be stored under several keys,
// in one node or many. Assigning to any of those keys through [Node.Set]
// updates the cell, and every key observes the new value.
//
// Variables compare by current value with [Variable.Equal] and by identity
// with [Variable.Same].
type Variable struct {
	value     any
	typ       reflect.Type
	choices   []any
	validator func(any) bool
	rule      string
	required  bool
	help      string
}

// VariableOption configures a [Variable].
type VariableOption func(*Variable)

// Type restricts values to those assignable to t.
func Type(t reflect.Type) VariableOption {
	return func(v *Variable) { v.typ = t }
}

// TypeOf is [Type] for the type parameter T.
func TypeOf[T any]() VariableOption {
	return Type(reflect.TypeFor[T]())
}

// Choices restricts values to those equal to one of choices.
func Choices(choices ...any) VariableOption {
	return func(v *Variable) { v.choices = choices }
}

// Validator rejects values for which fn returns false.
func Validator(fn func(any) bool) VariableOption {
	return func(v *Variable) { v.validator = fn }
}

// Rule rejects values that fail the validator/v10 tag, such as
// "min=1,max=8" or "hostname".
func Rule(tag string) VariableOption {
	return func(v *Variable) { v.rule = tag }
}

// Required makes reading or validating the unset cell an error.
func Required() VariableOption {
	return func(v *Variable) { v.required = true }
}

// Help attaches a description.
func Help(text string) VariableOption {
	return func(v *Variable) { v.help = text }
}

// NewVariable returns a cell holding value. Pass [Null] for an unset cell.
// The initial value is not validated; see [Variable.Validate].
func NewVariable(value any, opts ...VariableOption) *Variable {
	if box, ok := value.(*Variable); ok {
		value = box.value
	}

	v := &Variable{value: value}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v
}

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Set validates value and stores it. A *Variable argument contributes its
// current value. Setting [Null] clears the cell unless it is required.
func (v *Variable) Set(value any) error {
	if box, ok := value.(*Variable); ok {
		value = box.value
	}

	if err := v.check(value); err != nil {
		return err
	}

	v.value = value

	return nil
}

// Get returns the current value. An unset cell yields nil, or
// ErrRequiredValueMissing if it is required.
func (v *Variable) Get() (any, error) {
	if v.value == Null {
		if v.required {
			return nil, ErrRequiredValueMissing.With(slog.String("constraint", "required"))
		}

		return nil, nil
	}

	return v.value, nil
}

// Value returns the current value, or nil if unset.
func (v *Variable) Value() any {
	if v.value == Null {
		return nil
	}

	return v.value
}

// IsSet reports whether the cell holds a value.
func (v *Variable) IsSet() bool { return v.value != Null }

// Validate checks the current value against every constraint.
func (v *Variable) Validate() error { return v.check(v.value) }

// check runs the constraints in order: required, type, choices,
// validator, rule.
func (v *Variable) check(value any) error {
	if value == Null {
		if v.required {
			return ErrRequiredValueMissing.With(slog.String("constraint", "required"))
		}

		return nil
	}

	if v.typ != nil && !assignable(value, v.typ) {
		return invalid("type", "%s is not of type %s", describe(value), v.typ)
	}

	if len(v.choices) > 0 && !slices.ContainsFunc(v.choices, func(c any) bool {
		return Equal(c, value)
	}) {
		return invalid("choices", "%s is not one of %v", describe(value), v.choices)
	}

	if v.validator != nil && !v.validator(value) {
		return invalid("validator", "%s rejected by validator", describe(value))
	}

	if v.rule != "" {
		if err := validate().Var(value, v.rule); err != nil {
			return ErrValidation.Wrap(err).With(
				slog.String("constraint", "rule"),
				slog.String("rule", v.rule),
			)
		}
	}

	return nil
}

func invalid(constraint, format string, args ...any) error {
	return ErrValidation.
		Wrapf(format, args...).
		With(slog.String("constraint", constraint))
}

func assignable(value any, t reflect.Type) bool {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return true
		default:
			return false
		}
	}

	return reflect.TypeOf(value).AssignableTo(t)
}

// Equal reports whether the current value equals other, which may itself be
// a Variable.
func (v *Variable) Equal(other any) bool {
	return Equal(v.Value(), other)
}

// Same reports whether v and other are the same cell.
func (v *Variable) Same(other *Variable) bool {
	return v == other
}

// Help returns the description attached with the Help option.
func (v *Variable) Help() string { return v.help }

// String formats the current value.
func (v *Variable) String() string {
	return fmt.Sprint(v.value)
}
