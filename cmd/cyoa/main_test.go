package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunExitCodes(t *testing.T) {
	script := filepath.Join(t.TempDir(), "play.txt")
	if err := os.WriteFile(script, []byte("# look around\nlook\n/quit\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CYOA_SAVE_DIR", t.TempDir())
	t.Setenv("CYOA_LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"--version"}, 0},
		{"no game dir", nil, 1},
		{"script without path", []string{"--script"}, 1},
		{"bad seed", []string{"--seed", "x", "game"}, 1},
		{"check valid", []string{"--check", "../../loader/testdata/minimal"}, 0},
		{"check invalid", []string{"--check", "../../loader/testdata/invalid"}, 1},
		{"missing game", []string{"--plain", filepath.Join(t.TempDir(), "nope")}, 1},
		{"missing script", []string{"--script", filepath.Join(t.TempDir(), "nope.txt"), "../../loader/testdata/minimal"}, 1},
		{"script plays", []string{"--seed", "5", "--script", script, "../../loader/testdata/minimal"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Setenv("CYOA_HISTORY", "0")
	if got := run([]string{"--plain", "../../loader/testdata/minimal"}); got != 1 {
		t.Errorf("run = %d, want 1 for invalid config", got)
	}
}
