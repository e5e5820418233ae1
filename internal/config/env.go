package config

import (
	"os"
	"strconv"
)

// loadFromEnv overrides config from TDTXT_* environment variables. If
// sources is non-nil, it records which fields the environment set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	str := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			set(field)
		}
	}
	boolean := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			set(field)
		}
	}

	// Paths
	str("TDTXT_TODO_FILE", "todo_file", &cfg.TodoFile)
	str("TDTXT_DONE_FILE", "done_file", &cfg.DoneFile)
	str("TDTXT_SCHEMA_FILE", "schema_file", &cfg.SchemaFile)

	// Listing
	str("TDTXT_SORT", "sort_string", &cfg.SortString)
	if v := os.Getenv("TDTXT_LIST_LIMIT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.ListLimit = i
			set("list_limit")
		}
	}
	boolean("TDTXT_COLORS", "colors", &cfg.Colors)
	boolean("TDTXT_IGNORE_WEEKENDS", "ignore_weekends", &cfg.IgnoreWeekends)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Colors = false
		set("colors")
	}

	// Editing
	boolean("TDTXT_AUTO_CREATION_DATE", "auto_creation_date", &cfg.AutoCreationDate)
	boolean("TDTXT_APPEND_PARENT_PROJECTS", "append_parent_projects", &cfg.AppendParentProjects)
	boolean("TDTXT_APPEND_PARENT_CONTEXTS", "append_parent_contexts", &cfg.AppendParentContexts)

	// Tag names
	str("TDTXT_TAG_START", "tags.start", &cfg.Tags.Start)
	str("TDTXT_TAG_DUE", "tags.due", &cfg.Tags.Due)
	str("TDTXT_TAG_STAR", "tags.star", &cfg.Tags.Star)
	str("TDTXT_TAG_HIDDEN", "tags.hidden", &cfg.Tags.Hidden)
	str("TDTXT_TAG_RECURRENCE", "tags.recurrence", &cfg.Tags.Recurrence)

	// Logging configuration
	str("TDTXT_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TDTXT_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("TDTXT_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("TDTXT_LOG_CALLER", "log_caller", &cfg.LogCaller)
}
