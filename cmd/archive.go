package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/store"
	"github.com/nibzard/tdtxt/internal/todo"
)

func (a *app) newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move completed tasks to the done file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runArchive(cmd.Context())
		},
	}
}

// runArchive appends completed tasks to the done file, then removes them
// from the todo file. The done file is written first so a failure never
// loses tasks.
func (a *app) runArchive(ctx context.Context) error {
	return a.withList(ctx, func(l *todo.List) error {
		var done []*todo.Task
		var lines []string
		for _, t := range l.Tasks() {
			if t.Completed() {
				done = append(done, t)
				lines = append(lines, t.Source())
			}
		}
		if len(done) == 0 {
			fmt.Fprintln(a.out, "Nothing to archive.")
			return nil
		}

		lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		if err := store.AppendLines(lockCtx, a.cfg.DoneFile, lines); err != nil {
			return fmt.Errorf("archiving to %s: %w", a.cfg.DoneFile, err)
		}
		for _, t := range done {
			l.Delete(l.Number(t))
		}
		a.logger.Info("archived tasks", "count", len(done), "path", a.cfg.DoneFile)
		fmt.Fprintf(a.out, "Archived %d task(s) to %s.\n", len(done), a.cfg.DoneFile)
		return nil
	})
}
