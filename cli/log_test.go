package cli

import "testing"

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		assigned bool
		want     bool
		ok       bool
	}{
		{"--log-pretty", "", false, true, true},
		{"--no-log-pretty", "", false, false, true},
		{"--log-caller", "false", true, false, true},
		{"--no-log-caller", "false", true, true, true},
		{"--log-caller", "maybe", true, false, false},
	}

	for _, tt := range tests {
		got, ok := boolFlag(tt.name, tt.value, tt.assigned)
		if got != tt.want || ok != tt.ok {
			t.Errorf("boolFlag(%q, %q, %v) = %v, %v; want %v, %v",
				tt.name, tt.value, tt.assigned, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLogConfig_Scan(t *testing.T) {
	var f logConfig

	f.scan([]string{
		"eval", "--log-level", "debug", "--log-format=json",
		"--no-log-pretty", "--log-caller=true", "file.yaml",
	})

	if f.Level != "debug" {
		t.Errorf("Level = %q", f.Level)
	}

	if f.Format != "json" {
		t.Errorf("Format = %q", f.Format)
	}

	if f.Pretty {
		t.Error("Pretty should be false")
	}

	if !f.Caller {
		t.Error("Caller should be true")
	}
}

func TestLogConfig_ScanValueLooksLikeFlag(t *testing.T) {
	var f logConfig

	f.scan([]string{"--log-level", "--log-format", "text"})

	if f.Level != "" {
		t.Errorf("Level = %q, want empty", f.Level)
	}

	if f.Format != "text" {
		t.Errorf("Format = %q", f.Format)
	}
}
