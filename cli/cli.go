package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aconf/cli/cmd"
	"github.com/ardnew/aconf/pkg"
)

// baseConfig is the file name of the user configuration file.
const baseConfig = "config.yaml"

// CLI is the top-level command-line interface for aconf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Eval         cmd.Eval         `cmd:"" default:"withargs" help:"Merge, override, and interpolate configuration files."`
	Get          cmd.Get          `cmd:""                    help:"Print one resolved value."`
	Placeholders cmd.Placeholders `cmd:""                    help:"List the placeholders of each value."`
	Diff         cmd.Diff         `cmd:""                    help:"Print entries of the right file that differ from the left."`
	Intersect    cmd.Intersect    `cmd:""                    help:"Print entries shared by two files."`
	Watch        cmd.Watch        `cmd:""                    help:"Re-evaluate whenever a file changes."`
	Repl         cmd.Repl         `cmd:""                    help:"Explore a configuration interactively."`
	Init         cmd.Init         `cmd:""                    help:"Write the current global flags to the configuration file."`
}

// Run executes the aconf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before parsing so that parse errors are already
	// reported with the requested level and format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx, cmd.Section), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
