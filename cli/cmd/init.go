package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
	"github.com/ardnew/aconf/log"
	"github.com/ardnew/aconf/profile"
)

// Init writes the current global flag values to the configuration file.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrapf("no command context")
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || path == "" {
		return ErrWriteConfig.Wrapf("configuration path undefined")
	}

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	n, err := settings(ktx)
	if err != nil {
		return ErrWriteConfig.Wrap(err).With(slog.String("file", path))
	}

	file, err := os.Create(path)
	if err != nil {
		return ErrWriteConfig.Wrap(err).With(slog.String("file", path))
	}
	defer file.Close()

	if err := codec.Encode(file, n, codec.FormatOf(path), codec.DefaultIndent); err != nil {
		return ErrWriteConfig.Wrap(err).With(slog.String("file", path))
	}

	log.DebugContext(ctx, "initialized configuration file", slog.String("path", path))

	return nil
}

// settings collects the global flags into a node under [Section]. Each
// flag name is split on "-" into nested keys, so --log-level is stored as
// log.level.
func settings(ktx *kong.Context) (*conf.Node, error) {
	n := conf.New()
	ignore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		value, ok := setting(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		key := Section + "." + strings.ReplaceAll(flag.Name, "-", ".")
		if err := n.Set(key, value); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// setting converts a flag value for storage, reporting false for unset
// and empty values. Named string types are stored as plain strings.
func setting(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Slice, reflect.Map:
		return v, rv.Len() > 0
	default:
		return v, true
	}
}
