package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/ui"
)

func (a *app) newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse tasks in an interactive terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return ui.RunTUI(ctx, a.cfg, func() (*todo.List, error) {
				return a.loadList(ctx)
			})
		},
	}
}
