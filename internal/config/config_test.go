package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears every variable the loader reads. It returns the project dir.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, env := range []string{
		"TDTXT_CONFIG", "TDTXT_TODO_FILE", "TDTXT_DONE_FILE", "TDTXT_SCHEMA_FILE",
		"TDTXT_SORT", "TDTXT_LIST_LIMIT", "TDTXT_COLORS", "NO_COLOR", "TDTXT_IGNORE_WEEKENDS",
		"TDTXT_AUTO_CREATION_DATE", "TDTXT_APPEND_PARENT_PROJECTS", "TDTXT_APPEND_PARENT_CONTEXTS",
		"TDTXT_TAG_START", "TDTXT_TAG_DUE", "TDTXT_TAG_STAR", "TDTXT_TAG_HIDDEN", "TDTXT_TAG_RECURRENCE",
		"TDTXT_LOG_LEVEL", "TDTXT_LOG_FORMAT", "TDTXT_LOG_TIMESTAMPS", "TDTXT_LOG_CALLER",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", project)
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func parsedFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("tdtxt", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TodoFile != DefaultTodoFile {
		t.Errorf("TodoFile: got %q, want %q", cfg.TodoFile, DefaultTodoFile)
	}
	if cfg.SortString != DefaultSortString {
		t.Errorf("SortString: got %q, want %q", cfg.SortString, DefaultSortString)
	}
	if cfg.ListLimit != DefaultListLimit {
		t.Errorf("ListLimit: got %d, want %d", cfg.ListLimit, DefaultListLimit)
	}
	if !cfg.Colors || !cfg.AutoCreationDate {
		t.Errorf("Colors and AutoCreationDate should default to true")
	}
	if cfg.Tags.Due != "due" || cfg.Tags.Start != "t" {
		t.Errorf("Tags: got %+v", cfg.Tags)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	_, project := isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if filepath.Base(cfg.TodoFile) != DefaultTodoFile || !filepath.IsAbs(cfg.TodoFile) {
		t.Errorf("TodoFile: got %q", cfg.TodoFile)
	}
	if got, want := cfg.DoneFile, filepath.Join(filepath.Dir(cfg.TodoFile), DefaultDoneFile); got != want {
		t.Errorf("DoneFile: got %q, want %q", got, want)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile: got %q, want empty", cfg.SchemaFile)
	}
	if filepath.Base(cfg.ProjectRoot) != filepath.Base(project) {
		t.Errorf("ProjectRoot: got %q, want %q", cfg.ProjectRoot, project)
	}
}

func TestLoadLayers(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".tdtxt", "tdtxt.toml"), `
sort_string = "due"
list_limit = 5

[tags]
due = "deadline"
`)
	writeFile(t, filepath.Join(project, "tdtxt.toml"), `
todo_file = "tasks.txt"
list_limit = 10
`)
	t.Setenv("TDTXT_LOG_LEVEL", "DEBUG")

	cws, err := LoadWithSources(parsedFlags(t, "--file", "other.txt", "--no-color"))
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if got := filepath.Base(cfg.TodoFile); got != "other.txt" {
		t.Errorf("TodoFile: got %q, want flag value", cfg.TodoFile)
	}
	if cfg.SortString != "due" {
		t.Errorf("SortString: got %q, want user file value", cfg.SortString)
	}
	if cfg.ListLimit != 10 {
		t.Errorf("ListLimit: got %d, want project file value", cfg.ListLimit)
	}
	if cfg.Tags.Due != "deadline" || cfg.Tags.Start != "t" {
		t.Errorf("Tags: got %+v, want due overridden and start kept", cfg.Tags)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if cfg.Colors {
		t.Error("Colors should be disabled by --no-color")
	}

	wantSources := map[string]ConfigSource{
		"todo_file":   SourceFlag,
		"sort_string": SourceUserFile,
		"list_limit":  SourceProjFile,
		"tags.due":    SourceUserFile,
		"tags.start":  SourceDefault,
		"log_level":   SourceEnv,
		"colors":      SourceFlag,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("Sources[%s]: got %q, want %q", field, got, want)
		}
	}
	if len(cws.Files) != 2 || cws.ConfigFile() != "tdtxt.toml" {
		t.Errorf("Files: got %v", cws.Files)
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	_, project := isolate(t)

	writeFile(t, filepath.Join(project, "tdtxt.toml"), `list_limit = 3`)
	custom := filepath.Join(project, "custom.toml")
	writeFile(t, custom, `list_limit = 7`)

	cfg, err := Load(parsedFlags(t, "--config", custom))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListLimit != 7 {
		t.Errorf("ListLimit: got %d, want 7 from --config", cfg.ListLimit)
	}
	if cfg.ConfigFile != custom {
		t.Errorf("ConfigFile: got %q, want %q", cfg.ConfigFile, custom)
	}

	if _, err := Load(parsedFlags(t, "--config", filepath.Join(project, "missing.toml"))); err == nil {
		t.Error("expected an error for a missing --config file")
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ".tdtxt.toml"), "colour = true\nlist_limit = 2\n")

	cws, err := LoadWithSources(nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if len(cws.Unknown) != 1 || cws.Unknown[0] != "colour" {
		t.Errorf("Unknown: got %v, want [colour]", cws.Unknown)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, "tdtxt.toml"), "list_limit = \"many\"\n")

	if _, err := Load(nil); err == nil {
		t.Error("expected a decode error")
	}
}

func TestLoadInvalidLogFormat(t *testing.T) {
	isolate(t)
	t.Setenv("TDTXT_LOG_FORMAT", "xml")

	if _, err := Load(nil); err == nil {
		t.Error("expected an error for log format xml")
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TDTXT_TODO_FILE", "/tmp/env-todo.txt")
	t.Setenv("TDTXT_LIST_LIMIT", "25")
	t.Setenv("TDTXT_APPEND_PARENT_PROJECTS", "yes")
	t.Setenv("TDTXT_TAG_RECURRENCE", "repeat")
	t.Setenv("TDTXT_IGNORE_WEEKENDS", "true")
	t.Setenv("NO_COLOR", "")

	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource)
	loadFromEnv(cfg, sources)

	if cfg.TodoFile != "/tmp/env-todo.txt" {
		t.Errorf("TodoFile: got %q", cfg.TodoFile)
	}
	if cfg.ListLimit != 25 {
		t.Errorf("ListLimit: got %d, want 25", cfg.ListLimit)
	}
	if !cfg.AppendParentProjects {
		t.Error("AppendParentProjects should be true")
	}
	if cfg.Tags.Recurrence != "repeat" {
		t.Errorf("Tags.Recurrence: got %q", cfg.Tags.Recurrence)
	}
	if cfg.Colors {
		t.Error("NO_COLOR should disable colors even when empty")
	}
	if !cfg.IgnoreWeekends || sources["ignore_weekends"] != SourceEnv {
		t.Errorf("IgnoreWeekends: got %v from %q", cfg.IgnoreWeekends, sources["ignore_weekends"])
	}
	if sources["list_limit"] != SourceEnv {
		t.Errorf("Sources[list_limit]: got %q", sources["list_limit"])
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TDTXT_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/todo.txt", filepath.Join(home, "todo.txt")},
		{"$TDTXT_TEST_DIR/todo.txt", "/data/todo.txt"},
		{"relative/todo.txt", "relative/todo.txt"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListOptions(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.AppendParentContexts = true

	opts := cfg.ListOptions()
	if !opts.AppendParentContexts || opts.AppendParentProjects {
		t.Errorf("ListOptions: got %+v", opts)
	}
	if opts.Tags != cfg.TagConfig() {
		t.Errorf("ListOptions tags: got %+v, want %+v", opts.Tags, cfg.TagConfig())
	}
}
