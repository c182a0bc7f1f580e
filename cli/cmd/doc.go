// Package cmd implements the aconf subcommands.
//
// Every command that reads configuration files embeds [Source], which
// merges its files left to right and applies "--set key=value" overrides.
// Values given to --set are parsed as YAML scalars, so "--set port=8080"
// stores an int and "--set tags=[a,b]" a list.
//
//	aconf eval base.yaml prod.yaml --set db.port=6543 --output json
//	aconf get db.url base.yaml prod.yaml
//	aconf placeholders base.yaml
//	aconf diff base.yaml prod.yaml --recursive
//	aconf watch base.yaml
//	aconf repl base.yaml prod.yaml
//
// Commands write to the writer installed by [WithStdout], or standard
// output, and read "-" sources from [WithStdin], or standard input.
package cmd

import "github.com/ardnew/aconf/pkg"

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Section is the top-level key of the configuration file that holds flag
// defaults.
const Section = pkg.Name
