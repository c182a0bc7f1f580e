package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
	"github.com/ardnew/aconf/log"
)

// Source selects the configuration files a command reads and how they
// are combined.
type Source struct {
	Files     []string `arg:"" default:"-"   help:"Configuration file(s) merged left to right, or '-' for stdin." name:"file"`
	Set       []string `                     help:"Override a value after merging (repeatable)."                  placeholder:"KEY=VALUE" sep:"none" short:"s"`
	Stdin     string   `default:"yaml"       enum:"yaml,json"                                                  help:"Format of stdin."`
	Separator string   `default:"."          help:"Separator of nested keys."`
}

// nodeOptions returns the node options shared by every source.
func (s *Source) nodeOptions() []conf.Option {
	return []conf.Option{
		conf.WithSeparator(s.Separator),
		conf.WithLogger(log.Default()),
	}
}

// load decodes and merges the sources, then applies the overrides.
func (s *Source) load(ctx context.Context) (*conf.Node, error) {
	root, err := loadFiles(ctx, s.Files, s.Stdin, s.nodeOptions()...)
	if err != nil {
		return nil, err
	}

	for _, kv := range s.Set {
		key, text, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, ErrInvalidOverride.
				Wrapf("%q is not KEY=VALUE", kv).
				With(slog.String("override", kv))
		}

		if err := root.Set(key, codec.DecodeValue(text, s.nodeOptions()...)); err != nil {
			return nil, ErrInvalidOverride.Wrap(err).With(slog.String("key", key))
		}
	}

	return root, nil
}

// loadFiles merges the given files into one node. Later files take
// precedence.
func loadFiles(
	ctx context.Context,
	files []string,
	stdin string,
	opts ...conf.Option,
) (*conf.Node, error) {
	paths := uniquePaths(files)
	if len(paths) == 0 {
		return nil, ErrNoSource
	}

	root := conf.New(opts...)

	for _, path := range paths {
		n, err := decode(ctx, path, stdin, opts...)
		if err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "source loaded",
			slog.String("path", path),
			slog.Int("keys", n.Len()),
		)

		if err := root.Merge(n); err != nil {
			return nil, conf.WrapError(err).With(slog.String("path", path))
		}
	}

	return root, nil
}

func decode(
	ctx context.Context,
	path, stdin string,
	opts ...conf.Option,
) (*conf.Node, error) {
	if path != stdinSource {
		return codec.DecodeFile(path, opts...)
	}

	format, err := codec.ParseFormat(stdin)
	if err != nil {
		return nil, err
	}

	return codec.Decode(stdinFrom(ctx), format, opts...)
}

// Interp holds the interpolation flags.
type Interp struct {
	UseVariable bool `help:"Share referenced values through variables."`
	UnsafeEval  bool `help:"Evaluate interpolated text as literal expressions."`
}

func (i Interp) interpolateOptions() []conf.InterpolateOption {
	var opts []conf.InterpolateOption

	if i.UseVariable {
		opts = append(opts, conf.UseVariable())
	}

	if i.UnsafeEval {
		opts = append(opts, conf.UnsafeEval())
	}

	return opts
}

// Render holds the output flags.
type Render struct {
	Output string `default:"yaml" enum:"yaml,json" help:"Output format."                   short:"o"`
	Indent int    `default:"2"                     help:"Indent width, 0 for compact output." short:"i"`
}

func (r Render) write(ctx context.Context, v any) error {
	format, err := codec.ParseFormat(r.Output)
	if err != nil {
		return err
	}

	return codec.EncodeValue(stdoutFrom(ctx), v, format, r.Indent)
}
