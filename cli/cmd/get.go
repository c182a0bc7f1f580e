package cmd

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ardnew/aconf/conf"
)

// Get prints one value of the resolved configuration.
type Get struct {
	Key string `arg:"" help:"Key of the value, with nested keys joined by the separator." name:"key"`

	Source `embed:""`
	Interp `embed:""`
	Render `embed:""`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) error {
	e := Eval{Source: g.Source, Interp: g.Interp, Render: g.Render}

	n, err := e.resolve(ctx)
	if err != nil {
		return err
	}

	v, err := n.Value(g.Key)
	if err != nil {
		return err
	}

	if composite(v) {
		return g.write(ctx, v)
	}

	_, err = fmt.Fprintln(stdoutFrom(ctx), scalar(v))

	return err
}

// composite reports whether v needs an encoder to be printed.
func composite(v any) bool {
	if _, ok := v.(*conf.Node); ok {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

func scalar(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
