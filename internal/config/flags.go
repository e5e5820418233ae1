package config

import (
	"github.com/spf13/pflag"
)

// Global flag names.
const (
	FlagFile      = "file"
	FlagDoneFile  = "done-file"
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagNoColor   = "no-color"
)

// BindFlags defines the configuration flags on fs. Defaults are left
// empty: only flags the user changes override the other layers.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagFile, "t", "", "Path to the todo.txt file")
	fs.StringP(FlagDoneFile, "d", "", "Path to the archive file (default: done.txt next to the todo file)")
	fs.StringP(FlagConfig, "c", "", "Path to a config file, replacing tdtxt.toml lookup")
	fs.String(FlagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, "", "Log format (text, json, logfmt)")
	fs.Bool(FlagNoColor, false, "Disable colored output")
}

// applyFlags copies changed flags into cfg. Flags that were never bound or
// never set are ignored.
func applyFlags(cfg *Config, fs *pflag.FlagSet, sources map[string]ConfigSource) error {
	if fs == nil {
		return nil
	}

	flagToSource := map[string]string{
		FlagFile:      "todo_file",
		FlagDoneFile:  "done_file",
		FlagLogLevel:  "log_level",
		FlagLogFormat: "log_format",
		FlagNoColor:   "colors",
	}

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagFile:
			cfg.TodoFile = f.Value.String()
		case FlagDoneFile:
			cfg.DoneFile = f.Value.String()
		case FlagLogLevel:
			cfg.LogLevel = f.Value.String()
		case FlagLogFormat:
			cfg.LogFormat = f.Value.String()
		case FlagNoColor:
			var noColor bool
			noColor, err = fs.GetBool(FlagNoColor)
			cfg.Colors = cfg.Colors && !noColor
		default:
			return
		}
		if field, ok := flagToSource[f.Name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	})
	return err
}
