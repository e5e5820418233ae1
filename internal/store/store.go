// Package store reads and writes todo.txt files. A File holds an
// advisory lock on <path>.lock for as long as it is open, and every write
// replaces the file atomically so a crash never leaves a half-written list.
package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/nibzard/tdtxt/internal/todo"
)

// ErrLocked is returned when another process holds the lock and the
// context expires before it is released.
var ErrLocked = errors.New("todo file is locked by another process")

const lockRetryDelay = 50 * time.Millisecond

// File is an open, locked todo.txt file.
type File struct {
	path   string
	lock   *flock.Flock
	logger *log.Logger
}

// Open locks path for exclusive use. The file itself need not exist; its
// directory must. Open waits for a competing lock until ctx is done.
func Open(ctx context.Context, path string, logger *log.Logger) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("todo file path is empty")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	lock, err := acquire(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("locked todo file", "path", path)
	return &File{path: path, lock: lock, logger: logger}, nil
}

func acquire(ctx context.Context, path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}

// ReadLines returns the lines of the file without line terminators. A
// missing file reads as empty.
func (f *File) ReadLines() ([]string, error) {
	lines, err := ReadLines(f.path)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("read todo file", "path", f.path, "lines", len(lines))
	return lines, nil
}

// Load reads the file into a task list.
func (f *File) Load(opts todo.ListOptions) (*todo.List, error) {
	lines, err := f.ReadLines()
	if err != nil {
		return nil, err
	}
	return todo.LoadList(lines, opts), nil
}

// WriteLines replaces the file contents with lines.
func (f *File) WriteLines(lines []string) error {
	if err := writeAtomic(f.path, joinLines(lines)); err != nil {
		return err
	}
	f.logger.Debug("wrote todo file", "path", f.path, "lines", len(lines))
	return nil
}

// Save writes l back to the file.
func (f *File) Save(l *todo.List) error {
	return f.WriteLines(l.Lines())
}

// Close releases the lock. It is safe to call more than once.
func (f *File) Close() error {
	if f == nil || f.lock == nil {
		return nil
	}
	err := f.lock.Unlock()
	f.lock = nil
	f.logger.Debug("unlocked todo file", "path", f.path)
	return err
}

// ReadLines reads path line by line. Blank lines are kept so callers can
// decide what to ignore; a missing file yields no lines.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// AppendLines adds lines to the end of path, creating it if needed. It
// takes the same lock as Open for the duration of the write.
func AppendLines(ctx context.Context, path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	lock, err := acquire(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	existing, err := ReadLines(path)
	if err != nil {
		return err
	}
	return writeAtomic(path, joinLines(append(existing, lines...)))
}

func writeAtomic(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile creates new files with the temp file's 0600 mode.
	if os.IsNotExist(statErr) {
		if err := os.Chmod(path, 0o644); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
