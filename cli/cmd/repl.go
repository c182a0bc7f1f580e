package cmd

import (
	"context"

	"github.com/ardnew/aconf/cli/cmd/repl"
	"github.com/ardnew/aconf/log"
	"github.com/ardnew/aconf/pkg"
)

// Repl explores the merged configuration interactively.
type Repl struct {
	Source `embed:""`
	Interp `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	root, err := r.load(ctx)
	if err != nil {
		return err
	}

	cacheDir := pkg.CacheDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
			cacheDir = dir
		}
	}

	return repl.Run(ctx, root, cacheDir, log.Default(), repl.Config{
		Node:        r.nodeOptions(),
		Interpolate: r.interpolateOptions(),
	})
}
