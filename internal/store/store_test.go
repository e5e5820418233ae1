package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nibzard/tdtxt/internal/todo"
)

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "todo.txt"))
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("got %v, want no lines", lines)
	}
}

func TestReadLinesTrimsCarriageReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	if err := os.WriteFile(path, []byte("(A) Foo\r\n\r\nBar +p\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := []string{"(A) Foo", "", "Bar +p"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("got %q, want %q", lines, want)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	ctx := context.Background()

	f, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	list, err := f.Load(todo.ListOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if list.Count() != 0 {
		t.Fatalf("Count: got %d, want 0", list.Count())
	}
	list.Add("Buy milk id:1")
	list.Add("Bake p:1")
	if err := f.Save(list); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "Buy milk id:1\nBake p:1\n"; got != want {
		t.Errorf("file: got %q, want %q", got, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("mode: got %o, want 644", perm)
	}

	f, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	list, err = f.Load(todo.ListOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if children := list.Children(1, true); len(children) != 1 {
		t.Errorf("children of 1: got %d, want 1", len(children))
	}
}

func TestOpenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")

	first, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	if _, err := Open(ctx, path, nil); !errors.Is(err, ErrLocked) {
		t.Errorf("second Open: got %v, want ErrLocked", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	second, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open after release: %v", err)
	}
	second.Close()
}

func TestAppendLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive", "done.txt")
	ctx := context.Background()

	if err := AppendLines(ctx, path, []string{"x 2024-01-01 One"}); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}
	if err := AppendLines(ctx, path, nil); err != nil {
		t.Fatalf("AppendLines empty: %v", err)
	}
	if err := AppendLines(ctx, path, []string{"x 2024-01-02 Two"}); err != nil {
		t.Fatalf("AppendLines: %v", err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x 2024-01-01 One", "x 2024-01-02 Two"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("got %q, want %q", lines, want)
	}
}

func TestWriteLinesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	f, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := f.WriteLines(nil); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("file: got %q, want empty", data)
	}
}
