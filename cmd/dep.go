package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/printer"
	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

func (a *app) newDepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between tasks",
		Long: `Manage dependencies between tasks.

A dependency links a parent task (id:N) to a child task (p:N). The parent
is hidden from ls until all of its children are done.`,
	}
	cmd.AddCommand(
		a.newDepLinkCommand("add", "Add a dependency", func(l *todo.List, from, to int) { l.AddDependency(from, to) }),
		a.newDepLinkCommand("rm", "Remove a dependency", func(l *todo.List, from, to int) { l.RemoveDependency(from, to) }),
		a.newDepListCommand(),
		a.newDepCleanCommand(),
		a.newDepDotCommand(),
	)
	return cmd
}

// parseDepArgs reads "N M", "N to M", "N after M", "N before M" and
// "N partof M" into a parent and child reference.
func parseDepArgs(args []string) (parent, child string, err error) {
	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 3:
		switch args[1] {
		case "to", "after":
			return args[0], args[2], nil
		case "before", "partof":
			return args[2], args[0], nil
		}
		return "", "", fmt.Errorf("unknown relation %q, must be one of: to, after, before, partof", args[1])
	}
	return "", "", fmt.Errorf("expected NUMBER [to|after|before|partof] NUMBER")
}

func (a *app) newDepLinkCommand(name, short string, apply func(l *todo.List, from, to int)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " NUMBER [to|after|before|partof] NUMBER",
		Short: short,
		Example: fmt.Sprintf(`  tdtxt dep %s 1 2
  tdtxt dep %s 3 before 4`, name, name),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentRef, childRef, err := parseDepArgs(args)
			if err != nil {
				return err
			}
			return a.withList(cmd.Context(), func(l *todo.List) error {
				parent, err := resolve(l, parentRef)
				if err != nil {
					return err
				}
				child, err := resolve(l, childRef)
				if err != nil {
					return err
				}
				if parent == child {
					return fmt.Errorf("a task cannot depend on itself")
				}
				apply(l, l.Number(parent), l.Number(child))
				a.logger.Debug("dependency "+name, "parent", l.Number(parent), "child", l.Number(child))
				return a.printTasks(l, parent, child)
			})
		},
	}
}

func (a *app) newDepListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls NUMBER to | to NUMBER",
		Short: "List the children or the parents of a task",
		Example: `  tdtxt dep ls 1 to   # children of 1
  tdtxt dep ls to 1   # parents of 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, children := args[0], true
			switch {
			case args[1] == "to":
			case args[0] == "to":
				ref, children = args[1], false
			default:
				return fmt.Errorf("expected NUMBER to, or to NUMBER")
			}
			l, err := a.loadList(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolve(l, ref)
			if err != nil {
				return err
			}
			if children {
				return a.printTasks(l, l.Children(l.Number(t), true)...)
			}
			return a.printTasks(l, l.Parents(l.Number(t), true)...)
		},
	}
}

func (a *app) newDepCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove redundant dependencies and stale id:/p: tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(cmd.Context(), func(l *todo.List) error {
				l.CleanDependencies()
				if l.Dirty() {
					fmt.Fprintln(a.out, "Dependencies cleaned.")
				}
				return nil
			})
		},
	}
}

func (a *app) newDepDotCommand() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "dot [NUMBER]",
		Short: "Print the dependency graph in Graphviz format",
		Long: `Print the dependency graph in Graphviz format. With NUMBER only the task
and everything it is connected to through dependencies is shown.`,
		Example: `  tdtxt dep dot --text | dot -Tpng > deps.png`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadList(cmd.Context())
			if err != nil {
				return err
			}
			var filters []view.Filter
			if len(args) == 1 {
				t, err := resolve(l, args[0])
				if err != nil {
					return err
				}
				n := l.Number(t)
				related := append([]*todo.Task{t}, l.Parents(n, false)...)
				related = append(related, l.Children(n, false)...)
				filters = append(filters, view.Instance(related))
			}
			return (&printer.Dot{Text: text}).Print(a.out, view.New(l, nil, filters...))
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Label nodes with the task text")
	return cmd
}
