package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/aconf/conf"
)

// Eval merges configuration files, applies overrides, resolves every
// placeholder, and prints the result.
type Eval struct {
	Source `embed:""`
	Interp `embed:""`
	Render `embed:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	n, err := e.resolve(ctx)
	if err != nil {
		return err
	}

	return e.write(ctx, n)
}

// resolve loads and interpolates the configuration.
func (e *Eval) resolve(ctx context.Context) (*conf.Node, error) {
	n, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := n.Interpolate(e.interpolateOptions()...); err != nil {
		return nil, conf.WrapError(err).With(slog.String("command", "eval"))
	}

	return n, nil
}
