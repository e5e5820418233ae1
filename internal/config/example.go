package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tdtxt configuration file
# Values can be overridden by TDTXT_* environment variables or CLI flags.

# Task file (relative to the current directory; ~ and $VARS are expanded)
todo_file = "todo.txt"

# Archive for completed tasks (default: done.txt next to todo_file)
# done_file = "done.txt"

# JSON Schema that "ls --format json" output must satisfy
# schema_file = "tdtxt.schema.json"

# Sort expression: comma-separated [asc:|desc:]field clauses
sort_string = "desc:importance,due,prio"

# Maximum number of tasks "ls" prints (-1 for no limit)
list_limit = -1

# Colored output
colors = true

# Rank tasks due next Monday as due tomorrow on Fridays and weekends
ignore_weekends = false

# Add today's date to new tasks
auto_creation_date = true

# Copy a parent's +projects / @contexts to new children
append_parent_projects = false
append_parent_contexts = false

# Tag names with special meaning
[tags]
start = "t"
due = "due"
star = "star"
hidden = "h"
recurrence = "rec"

# Logging: debug, info, warn, error
# log_level = "warn"
# log_format = "text"   # text, json, logfmt
# log_timestamps = false
# log_caller = false
`
}
