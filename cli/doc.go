// Package cli contains the command line interface for aconf.
//
// # Usage
//
//	aconf [flags] [eval] FILE... [--set KEY=VALUE]... [--output yaml|json]
//	aconf get KEY FILE...
//	aconf placeholders FILE...
//	aconf diff LEFT RIGHT [--recursive]
//	aconf intersect LEFT RIGHT [--recursive]
//	aconf watch FILE...
//	aconf init [--force]
//
// Eval is the default command, so "aconf app.yaml" prints the resolved
// app.yaml.
//
// # Configuration file
//
// Global flags read their defaults from config.yaml in the user
// configuration directory ($XDG_CONFIG_HOME/aconf on Linux). The file is
// itself an aconf document: its "aconf" mapping holds the flag values,
// nested by the words of each flag name, and may use placeholders.
//
//	verbosity: debug
//	aconf:
//	  log:
//	    level: ${verbosity}
//	    format: json
//
// "aconf init" writes the current flag values to this file. Command-line
// flags always take precedence.
//
// # Logging and profiling
//
// The --log-* flags configure the process logger and take effect before
// the remaining arguments are parsed. The --pprof-* flags are available
// when built with the pprof tag; see package [github.com/ardnew/aconf/profile].
package cli
