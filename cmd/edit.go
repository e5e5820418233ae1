package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/todo"
)

func (a *app) newDoCommand() *cobra.Command {
	var date string
	var strict bool
	cmd := &cobra.Command{
		Use:   "do NUMBER...",
		Short: "Mark tasks as done",
		Long: `Mark tasks as done.

A task with unfinished subtasks asks whether they should be completed too;
--force completes them without asking. Completing a task with rec: adds
its next occurrence, counted from today, or from the old due date with
--strict or a rec:+ pattern.`,
		Example: `  tdtxt do 3
  tdtxt do --date yesterday 4 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			completion := todo.Today()
			if date != "" {
				d, ok := todo.ParseDateOrRelative(date)
				if !ok {
					return fmt.Errorf("invalid date %q", date)
				}
				completion = d
			}
			return a.runDo(cmd.Context(), args, completion, strict)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Completion `DATE` (ISO or relative, default today)")
	cmd.Flags().BoolVarP(&strict, "strict", "s", false, "Count recurrence from the old due date")
	return cmd
}

func (a *app) runDo(ctx context.Context, refs []string, date time.Time, strict bool) error {
	return a.withList(ctx, func(l *todo.List) error {
		tasks, err := resolveAll(l, refs)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.Completed() {
				fmt.Fprintf(a.out, "Todo %d has already been completed.\n", l.Number(t))
				continue
			}
			if err := a.completeChildren(l, t, date, strict); err != nil {
				return err
			}
			if err := a.complete(l, t, date, strict); err != nil {
				return err
			}
		}
		return nil
	})
}

// completeChildren offers to finish the open subtasks of t first.
func (a *app) completeChildren(l *todo.List, t *todo.Task, date time.Time, strict bool) error {
	var open []*todo.Task
	for _, child := range l.Children(l.Number(t), false) {
		if !child.Completed() {
			open = append(open, child)
		}
	}
	if len(open) == 0 {
		return nil
	}
	if !a.force {
		fmt.Fprintf(a.out, "%d has %d open subtask(s):\n", l.Number(t), len(open))
		if err := a.printTasks(l, open...); err != nil {
			return err
		}
	}
	if !a.confirm("Also mark subtasks as done?") {
		return nil
	}
	for _, child := range open {
		if err := a.complete(l, child, date, strict); err != nil {
			return err
		}
	}
	return nil
}

// complete finishes one task, adding the next occurrence of a recurring
// task before it.
func (a *app) complete(l *todo.List, t *todo.Task, date time.Time, strict bool) error {
	rec := t.TagConfig().Recurrence
	if t.HasTag(rec) {
		next, err := todo.AdvanceRecurring(t, strict)
		switch {
		case errors.Is(err, todo.ErrNoRecurrence):
			a.logger.Warn("not recurring", "number", l.Number(t), "err", err)
			fmt.Fprintf(a.errOut, "Warning: todo %d has an invalid recurrence pattern.\n", l.Number(t))
		case err != nil:
			return err
		default:
			l.AddTask(next)
			if err := a.printTask(l, "Recurring:", next); err != nil {
				return err
			}
		}
	}
	n := l.Number(t)
	l.SetCompleted(n, date)
	a.logger.Debug("completed task", "number", n)
	return a.printTask(l, "Completed:", t)
}

func (a *app) newPriorityCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "pri NUMBER... PRIORITY",
		Short:   "Set the priority of tasks",
		Example: `  tdtxt pri 1 2 A`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, value := args[:len(args)-1], strings.ToUpper(args[len(args)-1])
			if len(value) != 1 || !todo.IsValidPriority(value[0]) {
				return fmt.Errorf("invalid priority %q, must be a letter A-Z", args[len(args)-1])
			}
			return a.withList(cmd.Context(), func(l *todo.List) error {
				tasks, err := resolveAll(l, refs)
				if err != nil {
					return err
				}
				for _, t := range tasks {
					if t.Completed() {
						fmt.Fprintf(a.out, "Todo %d is completed, priority unchanged.\n", l.Number(t))
						continue
					}
					old := t.Priority()
					l.SetPriority(l.Number(t), value[0])
					switch {
					case old == value[0]:
						fmt.Fprintf(a.out, "Priority of %d is already %c.\n", l.Number(t), old)
					case old != 0:
						fmt.Fprintf(a.out, "Priority changed from %c to %c.\n", old, value[0])
					default:
						fmt.Fprintf(a.out, "Priority set to %c.\n", value[0])
					}
					if err := a.printTasks(l, t); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (a *app) newDepriCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "depri NUMBER...",
		Short: "Remove the priority of tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(cmd.Context(), func(l *todo.List) error {
				tasks, err := resolveAll(l, args)
				if err != nil {
					return err
				}
				for _, t := range tasks {
					if t.Priority() == 0 {
						continue
					}
					l.SetPriority(l.Number(t), 0)
					fmt.Fprintln(a.out, "Priority removed.")
					if err := a.printTasks(l, t); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (a *app) newTagCommand() *cobra.Command {
	var add bool
	cmd := &cobra.Command{
		Use:   "tag NUMBER KEY [VALUE]",
		Short: "Set, add or remove a tag",
		Long: `Set KEY to VALUE on a task, replacing the first existing value.
Without VALUE the tag is removed. Start and due dates accept relative
values such as tomorrow or 2w.`,
		Example: `  tdtxt tag 4 due fri
  tdtxt tag -a 4 see https://example.com
  tdtxt tag 4 star 1
  tdtxt tag 4 star`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, key := args[0], args[1]
			value := ""
			if len(args) == 3 {
				value = args[2]
			}
			return a.withList(cmd.Context(), func(l *todo.List) error {
				t, err := resolve(l, ref)
				if err != nil {
					return err
				}
				tags := t.TagConfig()
				if value != "" && (key == tags.Due || key == tags.Start) {
					if d, ok := todo.ParseDateOrRelative(value); ok {
						value = d.Format(todo.DateLayout)
					}
				}
				l.Modify(l.Number(t), func(t *todo.Task) {
					switch {
					case value == "":
						t.RemoveTag(key)
					case add:
						t.SetTag(key, value, todo.ForceAdd())
					default:
						t.SetTag(key, value)
					}
				})
				return a.printTasks(l, t)
			})
		},
	}
	cmd.Flags().BoolVarP(&add, "add", "a", false, "Add the tag even when the key already exists")
	return cmd
}

func (a *app) newAppendCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "append NUMBER TEXT...",
		Aliases: []string{"app"},
		Short:   "Append text to a task",
		Example: `  tdtxt append 2 @phone due:mon`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(cmd.Context(), func(l *todo.List) error {
				t, err := resolve(l, args[0])
				if err != nil {
					return err
				}
				n := l.Number(t)
				l.Append(n, strings.Join(args[1:], " "))
				l.Modify(n, (*todo.Task).ResolveRelativeDates)
				l.LinkRelationTags(n)
				return a.printTasks(l, t)
			})
		},
	}
}

func (a *app) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "del NUMBER...",
		Aliases: []string{"rm"},
		Short:   "Delete tasks",
		Long: `Delete tasks and their dependency links. A task with subtasks asks
whether they should be deleted too; --force deletes them without asking.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(cmd.Context(), func(l *todo.List) error {
				tasks, err := resolveAll(l, args)
				if err != nil {
					return err
				}
				var doomed []*todo.Task
				for _, t := range tasks {
					doomed = appendTask(doomed, t)
					children := l.Children(l.Number(t), false)
					if len(children) == 0 {
						continue
					}
					if !a.force {
						fmt.Fprintf(a.out, "%d has %d subtask(s):\n", l.Number(t), len(children))
						if err := a.printTasks(l, children...); err != nil {
							return err
						}
					}
					if a.confirm("Also delete subtasks?") {
						for _, c := range children {
							doomed = appendTask(doomed, c)
						}
					}
				}
				for _, t := range doomed {
					fmt.Fprintf(a.out, "Removed: %s\n", t.Source())
					n := l.Number(t)
					l.Detach(n)
					l.Delete(n)
				}
				a.logger.Debug("deleted tasks", "count", len(doomed))
				return nil
			})
		},
	}
}

func appendTask(tasks []*todo.Task, t *todo.Task) []*todo.Task {
	for _, existing := range tasks {
		if existing == t {
			return tasks
		}
	}
	return append(tasks, t)
}

func (a *app) newPostponeCommand() *cobra.Command {
	var moveStart bool
	cmd := &cobra.Command{
		Use:   "postpone NUMBER... PATTERN",
		Short: "Move the due date of tasks",
		Long: `Move the due date of tasks by a relative PATTERN (1d, 2w, 1m, 1y, 3b),
counting from the current due date or from today when there is none.`,
		Example: `  tdtxt postpone 5 1w
  tdtxt postpone -s 5 6 3b`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, pattern := args[:len(args)-1], args[len(args)-1]
			if _, ok := todo.RelativeDate(pattern, todo.Today()); !ok {
				return fmt.Errorf("invalid pattern %q", pattern)
			}
			return a.withList(cmd.Context(), func(l *todo.List) error {
				tasks, err := resolveAll(l, refs)
				if err != nil {
					return err
				}
				for _, t := range tasks {
					l.Modify(l.Number(t), func(t *todo.Task) {
						todo.Postpone(t, pattern, moveStart)
					})
				}
				return a.printTasks(l, tasks...)
			})
		},
	}
	cmd.Flags().BoolVarP(&moveStart, "start", "s", false, "Move the start date as well")
	return cmd
}
