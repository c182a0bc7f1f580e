package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
	"github.com/ardnew/aconf/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults
// from the YAML mapping under section:
//
//	aconf:
//	  log:
//	    level: debug
//	    pretty: false
//
// A flag is looked up by its name, the name with "-" replaced by "_", and
// the name split on "-" into nested keys, in that order. So --log-level
// matches any of "log-level", "log_level", or "log: {level: ...}".
// Placeholders in the file are resolved before lookup. Command-line flags
// override the file, and a file that cannot be read is ignored with a
// warning.
func resolve(ctx context.Context, section string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		n, err := codec.Decode(r, codec.FormatYAML)
		if err == nil {
			err = n.Interpolate()
		}

		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		v, err := n.Value(section)
		if err != nil {
			return config{}, nil
		}

		node, ok := v.(*conf.Node)
		if !ok {
			return config{}, nil
		}

		return config{node: node}, nil
	}
}

// config implements [kong.Resolver] over one section of the configuration
// file.
type config struct {
	node *conf.Node
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if r.node == nil {
		return nil, nil //nolint:nilnil
	}

	for _, key := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
		strings.ReplaceAll(flag.Name, "-", "."),
	} {
		if !r.node.Has(key) {
			continue
		}

		v, err := r.node.Value(key)
		if err != nil {
			return nil, err
		}

		return flagValue(v), nil
	}

	// Not found: let kong use the default.
	return nil, nil //nolint:nilnil
}

// flagValue converts a decoded value to a form kong's mappers accept.
// Kong parses numbers from strings.
func flagValue(v any) any {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = flagValue(elem)
		}

		return out
	default:
		return v
	}
}
