package config

import (
	"github.com/nibzard/tdtxt/internal/todo"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
	// Unknown lists keys found in config files that no field uses.
	Unknown []string
}

// Default values.
const (
	DefaultTodoFile   = "todo.txt"
	DefaultDoneFile   = "done.txt"
	DefaultSortString = "desc:importance,due,prio"
	DefaultListLimit  = -1
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for tdtxt.
type Config struct {
	// Paths
	TodoFile   string `toml:"todo_file"`
	DoneFile   string `toml:"done_file"`
	SchemaFile string `toml:"schema_file"`

	// Listing
	SortString string `toml:"sort_string"`
	ListLimit  int    `toml:"list_limit"`
	Colors     bool   `toml:"colors"`

	// Count a Monday due date as tomorrow from Friday on when sorting by
	// importance.
	IgnoreWeekends bool `toml:"ignore_weekends"`

	// Editing
	AutoCreationDate     bool `toml:"auto_creation_date"`
	AppendParentProjects bool `toml:"append_parent_projects"`
	AppendParentContexts bool `toml:"append_parent_contexts"`

	// Tag names with special meaning
	Tags todo.TagConfig `toml:"tags"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Explicit config file (--config or TDTXT_CONFIG), replaces the
	// project file lookup.
	ConfigFile string `toml:"-"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// TagConfig returns the tag names the core resolves dates through.
func (c *Config) TagConfig() todo.TagConfig { return c.Tags }

// ListOptions returns the options for building a todo.List.
func (c *Config) ListOptions() todo.ListOptions {
	return todo.ListOptions{
		Tags:                 c.Tags,
		AppendParentProjects: c.AppendParentProjects,
		AppendParentContexts: c.AppendParentContexts,
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TodoFile = DefaultTodoFile
	cfg.DoneFile = "" // done.txt next to the todo file
	cfg.SortString = DefaultSortString
	cfg.ListLimit = DefaultListLimit
	cfg.Colors = true
	cfg.AutoCreationDate = true
	cfg.Tags = todo.DefaultTagConfig()

	// Logging defaults
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"todo_file",
		"done_file",
		"schema_file",
		"sort_string",
		"list_limit",
		"colors",
		"ignore_weekends",
		"auto_creation_date",
		"append_parent_projects",
		"append_parent_contexts",
		"tags.start",
		"tags.due",
		"tags.star",
		"tags.hidden",
		"tags.recurrence",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}
