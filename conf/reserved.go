package conf

import "strings"

// NullKey is the sentinel key that can never be stored. A null mapping key
// is reported as [ErrInvalidKey], the same as this one.
const NullKey = "\x00"

// reserved holds the structural names that attribute access never routes
// into the mapping.
var reserved = map[string]struct{}{
	"getattr":     {},
	"setattr":     {},
	"delattr":     {},
	"hasattr":     {},
	"repr":        {},
	"extra_repr":  {},
	"keys":        {},
	"values":      {},
	"items":       {},
	"get":         {},
	"set":         {},
	"delete":      {},
	"merge":       {},
	"intersect":   {},
	"difference":  {},
	"interpolate": {},
}

// IsReserved reports whether name is a structural identifier: one of the
// fixed accessor names, or any name wrapped in double underscores such as
// "__class__".
func IsReserved(name string) bool {
	if _, ok := reserved[name]; ok {
		return true
	}

	return len(name) > 4 &&
		strings.HasPrefix(name, "__") &&
		strings.HasSuffix(name, "__")
}
