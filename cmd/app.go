package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tdtxt/internal/config"
	"github.com/nibzard/tdtxt/internal/printer"
	"github.com/nibzard/tdtxt/internal/store"
	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

// lockTimeout bounds how long a command waits for another process to
// release the todo file.
const lockTimeout = 5 * time.Second

// app carries the state shared by every command of one invocation.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	force  bool

	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
}

// withList loads the todo file under its lock, runs fn and writes the list
// back when fn changed it.
func (a *app) withList(ctx context.Context, fn func(l *todo.List) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	f, err := store.Open(lockCtx, a.cfg.TodoFile, a.logger)
	if err != nil {
		return err
	}
	defer f.Close()

	l, err := f.Load(a.cfg.ListOptions())
	if err != nil {
		return fmt.Errorf("loading %s: %w", a.cfg.TodoFile, err)
	}
	if err := fn(l); err != nil {
		return err
	}
	if !l.Dirty() {
		return nil
	}
	if err := f.Save(l); err != nil {
		return fmt.Errorf("saving %s: %w", a.cfg.TodoFile, err)
	}
	a.logger.Info("saved todo file", "path", a.cfg.TodoFile, "tasks", l.Count())
	return nil
}

// loadList reads the todo file without keeping it locked.
func (a *app) loadList(ctx context.Context) (*todo.List, error) {
	var list *todo.List
	err := a.withList(ctx, func(l *todo.List) error {
		list = l
		return nil
	})
	return list, err
}

// invalidRef wraps ErrInvalidTodoNumber with the reference the user gave.
func invalidRef(ref string) error {
	return fmt.Errorf("%w: %s", todo.ErrInvalidTodoNumber, ref)
}

// resolve looks up one task reference.
func resolve(l *todo.List, ref string) (*todo.Task, error) {
	t, _, err := l.Resolve(ref)
	if err != nil {
		return nil, invalidRef(ref)
	}
	return t, nil
}

// resolveAll looks up every reference before anything is modified, so a
// bad number leaves the list untouched.
func resolveAll(l *todo.List, refs []string) ([]*todo.Task, error) {
	tasks := make([]*todo.Task, 0, len(refs))
	for _, ref := range refs {
		t, err := resolve(l, ref)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// confirm asks a yes/no question on stdin. --force answers yes; end of
// input answers no.
func (a *app) confirm(question string) bool {
	if a.force {
		return true
	}
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	answer, err := a.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(a.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// printTasks prints tasks in list order with their numbers.
func (a *app) printTasks(l *todo.List, tasks ...*todo.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	p := &printer.Plain{Colors: a.cfg.Colors}
	return p.Print(a.out, view.New(l, nil, view.Instance(tasks)))
}

// printTask prints one task with a leading message such as "Completed:".
func (a *app) printTask(l *todo.List, label string, t *todo.Task) error {
	fmt.Fprint(a.out, label+" ")
	return a.printTasks(l, t)
}
