package conf

import (
	"errors"
	"testing"
)

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"keys", true},
		{"items", true},
		{"interpolate", true},
		{"extra_repr", true},
		{"__class__", true},
		{"__x__", true},
		{"____", false},
		{"__", false},
		{"_x_", false},
		{"name", false},
		{"Keys", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReserved(tt.name); got != tt.want {
				t.Errorf("IsReserved(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNode_AttrMatchesGet(t *testing.T) {
	n := New()
	_ = n.SetAttr("host", "localhost")
	_ = n.Set("port", 80)

	for _, key := range []string{"host", "port"} {
		byKey, err := n.Get(key)
		if err != nil {
			t.Fatal(err)
		}

		byAttr, err := n.Attr(key)
		if err != nil {
			t.Fatal(err)
		}

		if byKey != byAttr {
			t.Errorf("Get(%q) = %v but Attr(%q) = %v", key, byKey, key, byAttr)
		}
	}

	if _, ok := n.Meta("host"); ok {
		t.Error("expected no shadow copy in the attribute store")
	}
}

func TestNode_ReservedAttrRoutesToMeta(t *testing.T) {
	n := New()

	if err := n.SetAttr("keys", "meta"); err != nil {
		t.Fatal(err)
	}

	if n.Has("keys") {
		t.Error("reserved attribute must not enter the mapping")
	}

	if got, err := n.Attr("keys"); err != nil || got != "meta" {
		t.Errorf("Attr(keys) = %v, %v", got, err)
	}

	// A reserved name stored as a key is only reachable by key.
	_ = n.Set("items", 5)

	if got, _ := n.Get("items"); got != 5 {
		t.Errorf("Get(items) = %v", got)
	}

	if _, err := n.Attr("items"); !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("expected ErrAttributeNotFound, got %v", err)
	}
}

func TestNode_AttrFallsBackToMeta(t *testing.T) {
	n := New()
	n.SetMeta("origin", "file.yaml")

	if got, err := n.Attr("origin"); err != nil || got != "file.yaml" {
		t.Errorf("Attr(origin) = %v, %v", got, err)
	}

	// The reserved check and presence check run on every access.
	_ = n.Set("origin", "mapping")

	if got, _ := n.Attr("origin"); got != "mapping" {
		t.Errorf("expected mapping value once present, got %v", got)
	}

	if _, err := n.Attr("missing"); !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("expected ErrAttributeNotFound, got %v", err)
	}
}

func TestNode_DelAttr(t *testing.T) {
	n := New()
	_ = n.Set("a", 1)
	_ = n.SetAttr("__doc__", "text")

	if err := n.DelAttr("a"); err != nil || n.Has("a") {
		t.Errorf("DelAttr(a) = %v, Has = %v", err, n.Has("a"))
	}

	if err := n.DelAttr("__doc__"); err != nil || n.HasAttr("__doc__") {
		t.Errorf("DelAttr(__doc__) = %v", err)
	}

	if err := n.DelAttr("a"); !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("expected ErrAttributeNotFound, got %v", err)
	}
}
