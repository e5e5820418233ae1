package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/printer"
	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

// listOptions holds the flags of the ls command.
type listOptions struct {
	sort     string
	limit    int
	all      bool
	relevant bool
	format   string
	ids      string
}

func (a *app) defaultListOptions() listOptions {
	return listOptions{
		sort:   a.cfg.SortString,
		limit:  a.cfg.ListLimit,
		format: printer.FormatPlain,
	}
}

func (a *app) newListCommand() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "ls [EXPRESSION...]",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `List tasks matching every expression.

Expressions:
  word          text contains word (case-insensitive unless it has capitals)
  +project      task has the project
  @context      task has the context
  key:value     task has the tag
  due:<today    ordinal comparison of a tag (<, <=, =, !, >=, >)
  (<B)          priority comparison
  -expr         negation of any expression (put -- before the first one)

Without -x only open tasks are shown: not completed, started, not hidden
and not waiting on unfinished subtasks. With -r only tasks worth doing
today are shown: priority A, B due within 30 days, C due within 14 days,
or tasks without a due date.`,
		Example: `  tdtxt ls +work
  tdtxt ls -s desc:prio,due due:<=1w
  tdtxt ls -x -F json`,
		PreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("sort") {
				opts.sort = a.cfg.SortString
			}
			if !cmd.Flags().Changed("limit") {
				opts.limit = a.cfg.ListLimit
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context(), opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.sort, "sort", "s", "", "Sort `EXPRESSION`, e.g. desc:importance,due")
	flags.IntVarP(&opts.limit, "limit", "n", -1, "Show at most `N` tasks (-1 for all)")
	flags.BoolVarP(&opts.all, "all", "x", false, "Show completed, hidden and blocked tasks too")
	flags.BoolVarP(&opts.relevant, "relevant", "r", false, "Only show tasks relevant today")
	flags.StringVarP(&opts.format, "format", "F", printer.FormatPlain, "Output `FORMAT`: plain, json, yaml or dot")
	flags.StringVarP(&opts.ids, "ids", "i", "", "Only show the comma-separated task `NUMBERS`")
	return cmd
}

func (a *app) runList(ctx context.Context, opts listOptions, exprs []string) error {
	l, err := a.loadList(ctx)
	if err != nil {
		return err
	}

	p, err := printer.New(opts.format, printer.Options{
		Colors:     a.cfg.Colors,
		SchemaFile: a.cfg.SchemaFile,
	})
	if err != nil {
		return err
	}

	filters, err := listFilters(l, opts, exprs)
	if err != nil {
		return err
	}
	v := view.New(l, view.NewSorter(opts.sort, view.IgnoreWeekends(a.cfg.IgnoreWeekends)), filters...)
	a.logger.Debug("listing", "sort", opts.sort, "shown", v.Len(), "total", l.Count())
	return p.Print(a.out, v)
}

// listFilters builds the filter chain of ls. The limit goes last so it
// counts only tasks that passed every other filter.
func listFilters(l *todo.List, opts listOptions, exprs []string) ([]view.Filter, error) {
	var filters []view.Filter
	if !opts.all {
		filters = append(filters, view.Active(), view.HiddenTag(), view.Dependency(l))
	}
	if opts.relevant {
		filters = append(filters, view.Relevance())
	}
	if opts.ids != "" {
		var tasks []*todo.Task
		for _, ref := range strings.Split(opts.ids, ",") {
			if ref = strings.TrimSpace(ref); ref == "" {
				continue
			}
			n, err := strconv.Atoi(ref)
			if err != nil || l.Todo(n) == nil {
				return nil, invalidRef(ref)
			}
			tasks = append(tasks, l.Todo(n))
		}
		filters = append(filters, view.Instance(tasks))
	}
	filters = append(filters, view.ParseExpressions(exprs)...)
	if opts.limit >= 0 {
		filters = append(filters, view.Limit(opts.limit))
	}
	return filters, nil
}

func (a *app) newListProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsprj",
		Short: "List all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadList(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range l.Projects() {
				fmt.Fprintln(a.out, p)
			}
			return nil
		},
	}
}

func (a *app) newListContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lscon",
		Short: "List all contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadList(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range l.Contexts() {
				fmt.Fprintln(a.out, c)
			}
			return nil
		},
	}
}
