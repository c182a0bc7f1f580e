package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/aconf/conf"
)

// Operands names the two files compared by [Diff] and [Intersect].
type Operands struct {
	Left  string `arg:"" help:"First configuration file."  name:"left"  type:"existingfile"`
	Right string `arg:"" help:"Second configuration file." name:"right" type:"existingfile"`

	Recursive bool   `help:"Compare nested mappings key by key." short:"r"`
	Separator string `default:"." help:"Separator of nested keys."`
}

func (o *Operands) load(ctx context.Context) (left, right *conf.Node, err error) {
	opts := []conf.Option{conf.WithSeparator(o.Separator)}

	if left, err = loadFiles(ctx, []string{o.Left}, "yaml", opts...); err != nil {
		return nil, nil, err
	}

	if right, err = loadFiles(ctx, []string{o.Right}, "yaml", opts...); err != nil {
		return nil, nil, err
	}

	return left, right, nil
}

func (o *Operands) algebraOptions() []conf.AlgebraOption {
	if o.Recursive {
		return []conf.AlgebraOption{conf.Recursive()}
	}

	return nil
}

// Diff prints the entries of the right file that are missing from, or
// differ in, the left file.
type Diff struct {
	Operands `embed:""`
	Render   `embed:""`
}

// Run executes the diff command.
func (d *Diff) Run(ctx context.Context) error {
	left, right, err := d.load(ctx)
	if err != nil {
		return err
	}

	out, err := left.Difference(right, d.algebraOptions()...)
	if err != nil {
		return conf.WrapError(err).With(slog.String("command", "diff"))
	}

	return d.write(ctx, out)
}

// Intersect prints the entries the two files share with equal values.
type Intersect struct {
	Operands `embed:""`
	Render   `embed:""`
}

// Run executes the intersect command.
func (i *Intersect) Run(ctx context.Context) error {
	left, right, err := i.load(ctx)
	if err != nil {
		return err
	}

	out, err := left.Intersect(right, i.algebraOptions()...)
	if err != nil {
		return conf.WrapError(err).With(slog.String("command", "intersect"))
	}

	return i.write(ctx, out)
}
