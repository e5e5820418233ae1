package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/store"
	"github.com/nibzard/tdtxt/internal/todo"
)

func (a *app) newAddCommand() *cobra.Command {
	var fromFile string
	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Long: `Add one task made of the given words, or one task per line of --from-file.

Relative dates in t: and due: are resolved (due:tomorrow, due:2w, due:fri).
Relation tags link the new task into the dependency graph and are removed:
  after:N        N becomes a child of the new task
  before:N       the new task becomes a child of N (also partof:N)
  parents-of:N   the new task gets the parents of N
  children-of:N  the new task adopts the children of N`,
		Example: `  tdtxt add "(A) Call mom @phone due:tomorrow"
  tdtxt add Write report +work before:3
  tdtxt add --from-file inbox.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var texts []string
			if fromFile != "" {
				lines, err := store.ReadLines(fromFile)
				if err != nil {
					return err
				}
				texts = append(texts, lines...)
			}
			if len(args) > 0 {
				texts = append(texts, strings.Split(strings.Join(args, " "), "\n")...)
			}
			return a.runAdd(cmd.Context(), texts)
		},
	}
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Add one task per line of `FILE`")
	return cmd
}

func (a *app) runAdd(ctx context.Context, texts []string) error {
	var nonBlank []string
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			nonBlank = append(nonBlank, text)
		}
	}
	if len(nonBlank) == 0 {
		return fmt.Errorf("nothing to add")
	}

	return a.withList(ctx, func(l *todo.List) error {
		var added []*todo.Task
		for _, text := range nonBlank {
			t := l.Add(text)
			n := l.Number(t)
			l.Modify(n, func(t *todo.Task) {
				t.ResolveRelativeDates()
				if _, ok := t.CreationDate(); a.cfg.AutoCreationDate && !ok && !t.Completed() {
					t.SetCreationDate(todo.Today())
				}
			})
			l.LinkRelationTags(n)
			added = append(added, t)
			a.logger.Debug("added task", "number", n)
		}
		return a.printTasks(l, added...)
	})
}
