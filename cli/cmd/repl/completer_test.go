package repl

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/ardnew/aconf/codec"
	"github.com/ardnew/aconf/conf"
	"github.com/ardnew/aconf/log"
)

func TestWordBounds_KeyDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "db.port", 7, "port", 3, 7},
		{"in_placeholder", "${db.ho", 7, "ho", 5, 7},
		{"after_equals", "x = fo", 6, "fo", 4, 6},
		{"in_list", "[a, fo", 6, "fo", 4, 6},
		{"mid_word", "snake_case", 4, "snake_case", 0, 10},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "ab", 5, "ab", 0, 2},
		// Hyphens are part of keys, not word boundaries.
		{"hyphenated", "log-level", 9, "log-level", 0, 9},
		{"hyphenated_after_dot", "app.log-le", 10, "log-le", 4, 10},
		// After dot is an empty word (for triggering child completions).
		{"empty_after_dot", "db.", 3, "", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath_KeyChains(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "db.primary.", 11, "db.primary"},
		{"in_placeholder", "${db.primary.ho", 13, "db.primary"},
		{"after_equals", "x = a.b.", 8, "a.b"},
		{"value_of_assignment", "db.port = ", 10, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"hyphenated_chain", "app.log-level.", 14, "app.log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parentPath(tt.input, tt.wordStart)
			if got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

const sample = `
host: localhost
db:
  host: db.local
  port: 5432
name: svc
`

func sampleRoot(t *testing.T) *conf.Node {
	t.Helper()

	root, err := codec.DecodeString(sample, codec.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	return root
}

func TestChildCandidates(t *testing.T) {
	root := sampleRoot(t)

	tests := []struct {
		parent string
		want   []string
	}{
		{"", []string{"host", "db", "name"}},
		{"db", []string{"host", "port"}},
		{"host", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			if got := childCandidates(root, tt.parent); !slices.Equal(got, tt.want) {
				t.Errorf("childCandidates(%q) = %q, want %q", tt.parent, got, tt.want)
			}
		})
	}

	if got := childCandidates(nil, ""); got != nil {
		t.Errorf("childCandidates(nil) = %q, want nil", got)
	}
}

func testModel(t *testing.T, root *conf.Node) model {
	t.Helper()

	s := &session{root: root, logger: log.Make(io.Discard)}

	return newModel(context.Background(), s, NewHistory(""), s.logger)
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"top_level_prefix", modeKey, "na", []string{"name"}},
		{"children_after_dot", modeKey, "db.", []string{"host", "port"}},
		{"child_prefix", modeKey, "db.po", []string{"port"}},
		{"in_template", modeKey, "url ${db.ho", []string{"host"}},
		{"empty_top_level", modeKey, "", nil},
		{"no_match", modeKey, "zzz", nil},
		{"command", modeCtrl, "plac", []string{"placeholders"}},
		{"command_argument", modeCtrl, "del db.p", []string{"port"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t, sampleRoot(t))
			m.mode = tt.mode
			m.input.SetValue(tt.input)

			matches, _, _, _ := m.computeMatches()

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("computeMatches(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
