package repl

import "errors"

// Sentinel errors.
var (
	ErrNoSource     = errors.New("no configuration to explore")
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrUsage        = errors.New("invalid usage")
)
