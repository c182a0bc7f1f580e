// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("merged source", slog.String("file", path))
//
// # Configuration
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a new logger from an existing configuration, and
// [Config] does the same for the package-level logger used by [Info],
// [DebugContext], and friends.
//
// # Levels
//
// In addition to the four slog levels, [LevelTrace] sits below
// [LevelDebug] and is used for step-by-step interpolation diagnostics.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported. With
// [WithPretty], text records are colorized per value kind using lipgloss
// and JSON records are indented. Color is only emitted when the output
// writer is a terminal.
//
// The zero [Logger] discards all output, so components can hold one
// unconditionally.
package log
