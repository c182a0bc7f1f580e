package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ardnew/aconf/conf"
)

// Placeholders lists the names referenced by each value, before
// interpolation.
type Placeholders struct {
	Source `embed:""`
}

// Run executes the placeholders command.
func (p *Placeholders) Run(ctx context.Context) error {
	n, err := p.load(ctx)
	if err != nil {
		return err
	}

	w := stdoutFrom(ctx)

	for key, value := range n.AllItems() {
		names := referenced(value)
		if len(names) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s: %s\n", key, strings.Join(names, ", ")); err != nil {
			return err
		}
	}

	return nil
}

// referenced returns the distinct placeholder names in the strings of
// value, in order of first appearance.
func referenced(value any) []string {
	var out []string

	add := func(s string) {
		for _, name := range conf.FindPlaceholders(s) {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}

	switch v := value.(type) {
	case string:
		add(v)

	case []any:
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				add(s)
			}
		}
	}

	return out
}
