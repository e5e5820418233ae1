// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tdtxt/internal/todo"
)

var envVars = []string{
	"TDTXT_CONFIG", "TDTXT_TODO_FILE", "TDTXT_DONE_FILE", "TDTXT_SCHEMA_FILE",
	"TDTXT_SORT", "TDTXT_LIST_LIMIT", "TDTXT_COLORS", "NO_COLOR", "TDTXT_IGNORE_WEEKENDS",
	"TDTXT_AUTO_CREATION_DATE", "TDTXT_APPEND_PARENT_PROJECTS", "TDTXT_APPEND_PARENT_CONTEXTS",
	"TDTXT_TAG_START", "TDTXT_TAG_DUE", "TDTXT_TAG_STAR", "TDTXT_TAG_HIDDEN", "TDTXT_TAG_RECURRENCE",
	"TDTXT_LOG_LEVEL", "TDTXT_LOG_FORMAT", "TDTXT_LOG_TIMESTAMPS", "TDTXT_LOG_CALLER",
}

// workspace isolates a test in a temp project dir holding todo.txt with the
// given lines, and pins today to 2024-01-10.
func workspace(t *testing.T, lines ...string) string {
	t.Helper()
	home := t.TempDir()
	dir := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, env := range envVars {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	day := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	old := todo.Now
	todo.Now = func() time.Time { return day }
	t.Cleanup(func() { todo.Now = old })

	if len(lines) > 0 {
		writeTodo(t, dir, lines...)
	}
	return dir
}

func writeTodo(t *testing.T, dir string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "todo.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write todo.txt: %v", err)
	}
}

func readTodo(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "todo.txt"))
	if err != nil {
		t.Fatalf("read todo.txt: %v", err)
	}
	return string(data)
}

// runCLI runs tdtxt with colors off and returns stdout.
func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--no-color"}, args...)
	err := run(context.Background(), args, strings.NewReader(input), &out, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("tdtxt %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		workspace(t)
		out := mustRun(t, "--help")
		if !strings.Contains(out, "Available Commands") {
			t.Errorf("help output: %q", out)
		}
	})

	t.Run("shows version", func(t *testing.T) {
		workspace(t)
		if out := mustRun(t, "version"); !strings.HasPrefix(out, "tdtxt dev") {
			t.Errorf("version output: %q", out)
		}
		if out := mustRun(t, "--version"); !strings.Contains(out, "dev") {
			t.Errorf("--version output: %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		workspace(t)
		_, err := runCLI(t, "", "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("got %v, want an unknown command error", err)
		}
	})

	t.Run("no command lists tasks", func(t *testing.T) {
		workspace(t, "Buy milk")
		if out := mustRun(t); out != "1 Buy milk\n" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("missing todo file lists nothing", func(t *testing.T) {
		workspace(t)
		if out := mustRun(t, "ls"); out != "" {
			t.Errorf("got %q, want no output", out)
		}
	})
}

func TestAdd(t *testing.T) {
	t.Run("creation date and relative due date", func(t *testing.T) {
		dir := workspace(t)
		out := mustRun(t, "add", "(A)", "Call mom", "due:tomorrow")
		want := "(A) 2024-01-10 Call mom due:2024-01-11\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
		if out != "1 "+want {
			t.Errorf("output: got %q", out)
		}
	})

	t.Run("relation tags become dependencies", func(t *testing.T) {
		dir := workspace(t, "Write report")
		mustRun(t, "add", "Collect data before:1")
		want := "Write report id:1\n2024-01-10 Collect data p:1\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("from file", func(t *testing.T) {
		dir := workspace(t)
		inbox := filepath.Join(dir, "inbox.txt")
		if err := os.WriteFile(inbox, []byte("One\n\nx 2024-01-01 Two\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		mustRun(t, "add", "--from-file", inbox)
		want := "2024-01-10 One\nx 2024-01-01 Two\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("nothing to add", func(t *testing.T) {
		workspace(t)
		if _, err := runCLI(t, "", "add", "  "); err == nil {
			t.Error("expected an error for blank text")
		}
	})
}

func TestList(t *testing.T) {
	lines := []string{
		"Low thing +home",
		"(A) Top +work",
		"(C) Mid @phone",
		"x 2024-01-01 Old",
		"Hidden h:1",
		"Later t:2099-01-01",
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"ls"}, "2 (A) Top +work\n3 (C) Mid @phone\n1 Low thing +home\n"},
		{"limit", []string{"ls", "-n", "1"}, "2 (A) Top +work\n"},
		{"project", []string{"ls", "+work"}, "2 (A) Top +work\n"},
		{"negation", []string{"ls", "--", "-Top"}, "3 (C) Mid @phone\n1 Low thing +home\n"},
		{"priority expression", []string{"ls", "(<B)"}, "3 (C) Mid @phone\n1 Low thing +home\n"},
		{"sort by text", []string{"ls", "-s", "text"}, "1 Low thing +home\n3 (C) Mid @phone\n2 (A) Top +work\n"},
		{"ids", []string{"ls", "-i", "1, 3"}, "3 (C) Mid @phone\n1 Low thing +home\n"},
		{"all", []string{"ls", "-x", "-s", "text", "Hidden"}, "5 Hidden h:1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, lines...)
			if got := mustRun(t, tt.args...); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		workspace(t, lines...)
		out := mustRun(t, "ls", "-x", "-F", "json")
		var records []map[string]any
		if err := json.Unmarshal([]byte(out), &records); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if len(records) != len(lines) {
			t.Errorf("records: got %d, want %d", len(records), len(lines))
		}
	})

	t.Run("bad ids", func(t *testing.T) {
		workspace(t, lines...)
		if _, err := runCLI(t, "", "ls", "-i", "9"); err == nil {
			t.Error("expected an error for an unknown number")
		}
	})

	t.Run("projects and contexts", func(t *testing.T) {
		workspace(t, lines...)
		if got := mustRun(t, "lsprj"); got != "home\nwork\n" {
			t.Errorf("lsprj: got %q", got)
		}
		if got := mustRun(t, "lscon"); got != "phone\n" {
			t.Errorf("lscon: got %q", got)
		}
	})
}

func TestDo(t *testing.T) {
	t.Run("completes a task", func(t *testing.T) {
		dir := workspace(t, "(A) Foo")
		out := mustRun(t, "do", "1")
		if got, want := readTodo(t, dir), "x 2024-01-10 Foo\n"; got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
		if !strings.Contains(out, "Completed: 1 x 2024-01-10 Foo") {
			t.Errorf("output: %q", out)
		}

		out = mustRun(t, "do", "1")
		if !strings.Contains(out, "already been completed") {
			t.Errorf("second do: %q", out)
		}
	})

	t.Run("recurring task", func(t *testing.T) {
		dir := workspace(t, "Water plants rec:1w due:2024-01-08")
		mustRun(t, "do", "1")
		want := "x 2024-01-10 Water plants rec:1w due:2024-01-08\n" +
			"2024-01-10 Water plants rec:1w due:2024-01-17\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("strict recurrence", func(t *testing.T) {
		dir := workspace(t, "Pay rent rec:1m due:2024-01-01")
		mustRun(t, "do", "--strict", "1")
		if got := readTodo(t, dir); !strings.Contains(got, "2024-01-10 Pay rent rec:1m due:2024-02-01\n") {
			t.Errorf("file: %q", got)
		}
	})

	t.Run("explicit date", func(t *testing.T) {
		dir := workspace(t, "Foo")
		mustRun(t, "do", "--date", "2024-01-05", "1")
		if got, want := readTodo(t, dir), "x 2024-01-05 Foo\n"; got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	subtasks := []string{"Parent id:1", "Child p:1"}

	t.Run("subtasks confirmed", func(t *testing.T) {
		dir := workspace(t, subtasks...)
		if _, err := runCLI(t, "y\n", "do", "1"); err != nil {
			t.Fatal(err)
		}
		want := "x 2024-01-10 Parent id:1\nx 2024-01-10 Child p:1\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("subtasks declined", func(t *testing.T) {
		dir := workspace(t, subtasks...)
		out, err := runCLI(t, "n\n", "do", "1")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Also mark subtasks as done?") {
			t.Errorf("no prompt in %q", out)
		}
		want := "x 2024-01-10 Parent id:1\nChild p:1\n"
		if got := readTodo(t, dir); got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("subtasks forced", func(t *testing.T) {
		dir := workspace(t, subtasks...)
		out := mustRun(t, "--force", "do", "1")
		if strings.Contains(out, "Also mark") {
			t.Errorf("--force should not prompt: %q", out)
		}
		if got := readTodo(t, dir); strings.Count(got, "x 2024-01-10") != 2 {
			t.Errorf("file: %q", got)
		}
	})

	t.Run("invalid number leaves the file alone", func(t *testing.T) {
		dir := workspace(t, "Foo", "Bar")
		_, err := runCLI(t, "", "do", "1", "9")
		if err == nil || err.Error() != "invalid todo number given: 9" {
			t.Errorf("got %v", err)
		}
		if got := readTodo(t, dir); got != "Foo\nBar\n" {
			t.Errorf("file changed: %q", got)
		}
	})
}

func TestPriority(t *testing.T) {
	dir := workspace(t, "Foo", "(B) Bar")

	out := mustRun(t, "pri", "1", "2", "a")
	if !strings.Contains(out, "Priority set to A.") || !strings.Contains(out, "Priority changed from B to A.") {
		t.Errorf("output: %q", out)
	}
	if got, want := readTodo(t, dir), "(A) Foo\n(A) Bar\n"; got != want {
		t.Errorf("file: got %q, want %q", got, want)
	}

	mustRun(t, "depri", "2")
	if got, want := readTodo(t, dir), "(A) Foo\nBar\n"; got != want {
		t.Errorf("file after depri: got %q, want %q", got, want)
	}

	if _, err := runCLI(t, "", "pri", "1", "AA"); err == nil {
		t.Error("expected an error for an invalid priority")
	}
}

func TestPriorityOfCompletedTask(t *testing.T) {
	dir := workspace(t, "x 2024-01-01 Done")

	out := mustRun(t, "pri", "1", "A")
	if !strings.Contains(out, "Todo 1 is completed, priority unchanged.") {
		t.Errorf("output: %q", out)
	}
	if strings.Contains(out, "Priority set") {
		t.Errorf("completed task reported as changed: %q", out)
	}
	if got, want := readTodo(t, dir), "x 2024-01-01 Done\n"; got != want {
		t.Errorf("file: got %q, want %q", got, want)
	}
}

func TestArchiveToNewDirectory(t *testing.T) {
	dir := workspace(t, "x 2024-01-01 Done", "Open")
	done := filepath.Join(dir, "archive", "done.txt")

	mustRun(t, "--done-file", done, "archive")
	data, err := os.ReadFile(done)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "x 2024-01-01 Done\n"; got != want {
		t.Errorf("done: got %q, want %q", got, want)
	}
}

func TestTagAndAppend(t *testing.T) {
	dir := workspace(t, "Foo")

	mustRun(t, "tag", "1", "due", "tomorrow")
	if got, want := readTodo(t, dir), "Foo due:2024-01-11\n"; got != want {
		t.Errorf("tag: got %q, want %q", got, want)
	}

	mustRun(t, "tag", "-a", "1", "see", "x")
	mustRun(t, "tag", "-a", "1", "see", "y")
	if got, want := readTodo(t, dir), "Foo due:2024-01-11 see:x see:y\n"; got != want {
		t.Errorf("tag -a: got %q, want %q", got, want)
	}

	mustRun(t, "tag", "1", "see")
	mustRun(t, "tag", "1", "due")
	if got, want := readTodo(t, dir), "Foo\n"; got != want {
		t.Errorf("tag removal: got %q, want %q", got, want)
	}

	mustRun(t, "append", "1", "@phone", "t:today")
	if got, want := readTodo(t, dir), "Foo @phone t:2024-01-10\n"; got != want {
		t.Errorf("append: got %q, want %q", got, want)
	}
}

func TestDelete(t *testing.T) {
	t.Run("detaches before deleting", func(t *testing.T) {
		dir := workspace(t, "A id:1", "B p:1", "C")
		out := mustRun(t, "del", "2")
		if got, want := readTodo(t, dir), "A\nC\n"; got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
		if !strings.Contains(out, "Removed: B p:1") {
			t.Errorf("output: %q", out)
		}
	})

	t.Run("subtasks forced", func(t *testing.T) {
		dir := workspace(t, "A id:1", "B p:1", "C")
		mustRun(t, "-f", "del", "1")
		if got, want := readTodo(t, dir), "C\n"; got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})

	t.Run("subtasks kept", func(t *testing.T) {
		dir := workspace(t, "A id:1", "B p:1", "C")
		if _, err := runCLI(t, "", "del", "1"); err != nil {
			t.Fatal(err)
		}
		if got, want := readTodo(t, dir), "B\nC\n"; got != want {
			t.Errorf("file: got %q, want %q", got, want)
		}
	})
}

func TestDep(t *testing.T) {
	t.Run("add, list and remove", func(t *testing.T) {
		dir := workspace(t, "A", "B")

		mustRun(t, "dep", "add", "1", "to", "2")
		if got, want := readTodo(t, dir), "A id:1\nB p:1\n"; got != want {
			t.Errorf("add: got %q, want %q", got, want)
		}
		if got := mustRun(t, "dep", "ls", "1", "to"); got != "2 B p:1\n" {
			t.Errorf("children: got %q", got)
		}
		if got := mustRun(t, "dep", "ls", "to", "2"); got != "1 A id:1\n" {
			t.Errorf("parents: got %q", got)
		}

		mustRun(t, "dep", "rm", "1", "2")
		if got, want := readTodo(t, dir), "A\nB\n"; got != want {
			t.Errorf("rm: got %q, want %q", got, want)
		}
	})

	t.Run("before swaps parent and child", func(t *testing.T) {
		dir := workspace(t, "A", "B")
		mustRun(t, "dep", "add", "1", "before", "2")
		if got, want := readTodo(t, dir), "A p:1\nB id:1\n"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("self dependency", func(t *testing.T) {
		workspace(t, "A")
		if _, err := runCLI(t, "", "dep", "add", "1", "1"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("unknown relation", func(t *testing.T) {
		workspace(t, "A", "B")
		if _, err := runCLI(t, "", "dep", "add", "1", "near", "2"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("clean", func(t *testing.T) {
		dir := workspace(t, "A id:1", "B id:2 p:1", "C p:1 p:2")
		mustRun(t, "dep", "clean")
		if got, want := readTodo(t, dir), "A id:1\nB id:2 p:1\nC p:2\n"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("dot", func(t *testing.T) {
		workspace(t, "A id:1", "B p:1", "C")
		want := "digraph g {\n  1\n  1 -> 2 [label=\"1\"]\n  2\n  3\n}\n"
		if got := mustRun(t, "dep", "dot"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		want = "digraph g {\n  1\n  1 -> 2 [label=\"1\"]\n  2\n}\n"
		if got := mustRun(t, "dep", "dot", "2"); got != want {
			t.Errorf("dot 2: got %q, want %q", got, want)
		}
	})
}

func TestPostpone(t *testing.T) {
	dir := workspace(t, "Foo t:2024-01-08 due:2024-01-10", "Bar")

	mustRun(t, "postpone", "-s", "1", "2", "1w")
	want := "Foo t:2024-01-15 due:2024-01-17\nBar due:2024-01-17\n"
	if got := readTodo(t, dir); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := runCLI(t, "", "postpone", "1", "soon"); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}

func TestArchive(t *testing.T) {
	dir := workspace(t, "x 2024-01-01 Done", "Open")

	out := mustRun(t, "archive")
	if !strings.Contains(out, "Archived 1 task(s)") {
		t.Errorf("output: %q", out)
	}
	if got, want := readTodo(t, dir), "Open\n"; got != want {
		t.Errorf("todo: got %q, want %q", got, want)
	}
	done, err := os.ReadFile(filepath.Join(dir, "done.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(done), "x 2024-01-01 Done\n"; got != want {
		t.Errorf("done: got %q, want %q", got, want)
	}

	if out := mustRun(t, "archive"); !strings.Contains(out, "Nothing to archive") {
		t.Errorf("second archive: %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "config", "show", "--sources")
	if !strings.Contains(out, "todo_file") || !strings.Contains(out, "default") {
		t.Errorf("sources: %q", out)
	}
	if !strings.Contains(out, "colors") || !strings.Contains(out, "flag") {
		t.Errorf("--no-color should be reported as a flag: %q", out)
	}

	out = mustRun(t, "config", "init")
	if !strings.Contains(out, "Created") {
		t.Errorf("init: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "tdtxt.toml")); err != nil {
		t.Fatalf("tdtxt.toml not created: %v", err)
	}
	if _, err := runCLI(t, "", "config", "init"); err == nil {
		t.Error("expected an error when tdtxt.toml exists")
	}

	out = mustRun(t, "config", "show")
	if !strings.Contains(out, "sort_string = ") || !strings.Contains(out, "# files:") {
		t.Errorf("show: %q", out)
	}
}

func TestTranslateError(t *testing.T) {
	err := translateError(invalidRef("12"))
	if err.Error() != "invalid todo number given: 12" {
		t.Errorf("got %q", err)
	}
	if got := translateError(todo.ErrNoRecurrence).Error(); got != "task has no valid recurrence pattern" {
		t.Errorf("got %q", got)
	}
	plain := errors.New("boom")
	if translateError(plain) != plain {
		t.Error("other errors should pass through")
	}
}

func TestParseDepArgs(t *testing.T) {
	tests := []struct {
		args          []string
		parent, child string
		wantErr       bool
	}{
		{[]string{"1", "2"}, "1", "2", false},
		{[]string{"1", "to", "2"}, "1", "2", false},
		{[]string{"1", "after", "2"}, "1", "2", false},
		{[]string{"1", "before", "2"}, "2", "1", false},
		{[]string{"1", "partof", "2"}, "2", "1", false},
		{[]string{"1", "near", "2"}, "", "", true},
		{[]string{"1"}, "", "", true},
	}
	for _, tt := range tests {
		parent, child, err := parseDepArgs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDepArgs(%v): err %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if parent != tt.parent || child != tt.child {
			t.Errorf("parseDepArgs(%v): got %s,%s want %s,%s", tt.args, parent, child, tt.parent, tt.child)
		}
	}
}
