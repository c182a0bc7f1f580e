package conf

import "testing"

func TestEqual(t *testing.T) {
	node := New()
	_ = node.Set("a", 1)
	_ = node.Set("b.c", "x")

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same int", 1, 1, true},
		{"int and float", 1, 1.0, true},
		{"signed and unsigned", int64(2), uint8(2), true},
		{"negative and unsigned", -1, uint(1), false},
		{"string and int", "1", 1, false},
		{"nil", nil, nil, true},
		{"variable and value", NewVariable(3), 3, true},
		{"two variables", NewVariable("x"), NewVariable("x"), true},
		{"sequences", []any{1, "x"}, []any{1.0, "x"}, true},
		{"sequence lengths", []any{1}, []any{1, 2}, false},
		{"typed sequences", []int{1, 2}, []any{1, 2}, true},
		{"node and map", node, map[string]any{"a": 1, "b": map[string]any{"c": "x"}}, true},
		{"node and smaller map", node, map[string]any{"a": 1}, false},
		{"maps", map[string]int{"a": 1}, map[string]any{"a": 1.0}, true},
		{"bytes", []byte("ab"), []byte("ab"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
