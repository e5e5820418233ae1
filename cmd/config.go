package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/nibzard/tdtxt/internal/config"
)

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "tdtxt %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}

func (a *app) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
	}
	cmd.AddCommand(a.newConfigShowCommand(), a.newConfigInitCommand())
	return cmd
}

func (a *app) newConfigShowCommand() *cobra.Command {
	var sources bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sources {
				a.printSources()
				return nil
			}
			if len(a.cws.Files) > 0 {
				fmt.Fprintf(a.out, "# files: %s\n", strings.Join(a.cws.Files, ", "))
			}
			return toml.NewEncoder(a.out).Encode(a.cfg)
		},
	}
	cmd.Flags().BoolVar(&sources, "sources", false, "Show where each value came from")
	return cmd
}

func (a *app) printSources() {
	fields := make([]string, 0, len(a.cws.Sources))
	width := 0
	for field := range a.cws.Sources {
		fields = append(fields, field)
		width = max(width, len(field))
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(a.out, "%-*s  %s\n", width, field, a.cws.Sources[field])
	}
	for _, key := range a.cws.Unknown {
		fmt.Fprintf(a.out, "%-*s  unknown key\n", width, key)
	}
}

func (a *app) newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example tdtxt.toml to the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.cfg.ProjectRoot, "tdtxt.toml")
			if _, err := os.Stat(path); err == nil && !a.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := atomic.WriteFile(path, strings.NewReader(config.ExampleConfig())); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			if err := os.Chmod(path, 0o644); err != nil {
				return fmt.Errorf("chmod %s: %w", path, err)
			}
			fmt.Fprintf(a.out, "Created %s\n", path)
			return nil
		},
	}
}
