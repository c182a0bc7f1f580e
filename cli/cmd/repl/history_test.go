package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_WriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"db.port", modeKey},
		{"list", modeCtrl},
		{"db.port", modeKey}, // moved to the end
		{"db.port", modeKey}, // repeat of the last entry
		{"  ", modeKey},      // blank
	} {
		if err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatalf("Write(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{{"list", modeCtrl}, {"db.port", modeKey}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "C:list\nK:db.port\n" {
		t.Errorf("file = %q", got)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("host\nC:show json\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"host", modeKey}, {"show json", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Write("a", modeKey); err != nil {
		t.Fatal(err)
	}

	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}

	if e, err := h.Entry(0); err != nil || e.Line != "a" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	if _, err := h.Entry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(1) error = %v, want ErrOutOfBounds", err)
	}
}
