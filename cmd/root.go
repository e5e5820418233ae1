// Package cmd implements the CLI command structure for tdtxt.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/config"
	"github.com/nibzard/tdtxt/internal/logging"
	"github.com/nibzard/tdtxt/internal/store"
	"github.com/nibzard/tdtxt/internal/todo"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tdtxt CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		logger: logging.Discard(),
	}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		return translateError(err)
	}
	return nil
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tdtxt",
		Short: "A todo.txt task manager with dependencies and recurrence",
		Long: `tdtxt manages a todo.txt file from the command line.

Tasks are plain todo.txt lines. Dependencies are stored as id: and p: tags,
recurring tasks use rec:, and start/due dates use t: and due:.
Without a command, tdtxt lists the relevant tasks.`,
		Version:           Version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context(), a.defaultListOptions(), nil)
		},
	}

	flags := root.PersistentFlags()
	config.BindFlags(flags)
	flags.BoolVarP(&a.force, "force", "f", false, "Do not ask for confirmation")

	root.AddCommand(
		a.newAddCommand(),
		a.newListCommand(),
		a.newDoCommand(),
		a.newPriorityCommand(),
		a.newDepriCommand(),
		a.newTagCommand(),
		a.newAppendCommand(),
		a.newDeleteCommand(),
		a.newDepCommand(),
		a.newPostponeCommand(),
		a.newArchiveCommand(),
		a.newListProjectsCommand(),
		a.newListContextsCommand(),
		a.newTUICommand(),
		a.newVersionCommand(),
		a.newConfigCommand(),
	)
	return root
}

// setup loads configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cws, err := config.LoadWithSources(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cws = cws
	a.cfg = cws.Config
	a.logger = logging.FromConfig(a.errOut, a.cfg)

	for _, key := range cws.Unknown {
		a.logger.Warn("unknown config key", "key", key)
	}
	a.logger.Debug("config loaded",
		"todo_file", a.cfg.TodoFile,
		"done_file", a.cfg.DoneFile,
		"files", strings.Join(cws.Files, ","),
	)
	return nil
}

// translateError turns the errors users commonly hit into one-line
// messages.
func translateError(err error) error {
	switch {
	case errors.Is(err, todo.ErrInvalidTodoNumber):
		return fmt.Errorf("invalid todo number given: %s", refFromError(err))
	case errors.Is(err, todo.ErrNoRecurrence):
		return errors.New("task has no valid recurrence pattern")
	case errors.Is(err, store.ErrLocked):
		return errors.New("the todo file is in use by another tdtxt process, try again")
	}
	return err
}

// refFromError extracts the reference appended by invalidRef.
func refFromError(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

