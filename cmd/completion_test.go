package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell  string
		needle string
	}{
		{"bash", "# bash completion V2 for tdtxt"},
		{"zsh", "#compdef tdtxt"},
		{"fish", "# fish completion for tdtxt"},
		{"powershell", "# powershell completion for tdtxt"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			workspace(t)
			out := mustRun(t, "completion", tt.shell)
			if !strings.Contains(out, tt.needle) {
				t.Errorf("%s completion missing %q", tt.shell, tt.needle)
			}
		})
	}
}

func TestCompletionNeedsNoTodoFile(t *testing.T) {
	dir := workspace(t)
	mustRun(t, "completion", "bash")
	if _, err := os.Stat(filepath.Join(dir, "todo.txt")); err == nil {
		t.Error("completion should not create todo.txt")
	}
}
