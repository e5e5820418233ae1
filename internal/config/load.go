package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tdtxt/tdtxt.toml or OS-specific config dir)
// 3. Project config file (tdtxt.toml or .tdtxt.toml in current directory, or --config)
// 4. Environment variables
// 5. CLI flags the user changed
//
// fs is the already-parsed flag set carrying the flags from BindFlags; it
// may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cws, err := LoadWithSources(fs)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *pflag.FlagSet) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := cws.loadConfigFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Project config file, unless one was named explicitly
	projectConfigFile := explicitConfigFile(fs)
	if projectConfigFile == "" {
		projectConfigFile = findProjectConfigFile()
	} else if _, err := os.Stat(projectConfigFile); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if projectConfigFile != "" {
		if err := cws.loadConfigFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		cfg.ConfigFile = projectConfigFile
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Apply CLI flags (they override everything)
	if err := applyFlags(cfg, fs, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// explicitConfigFile returns the config file named by flag or environment.
func explicitConfigFile(fs *pflag.FlagSet) string {
	if fs != nil {
		if f := fs.Lookup(FlagConfig); f != nil && f.Changed {
			return expandPath(f.Value.String())
		}
	}
	return expandPath(os.Getenv("TDTXT_CONFIG"))
}

// loadConfigFile decodes a TOML file over the current config and records
// every key it defines.
func (cws *ConfigWithSources) loadConfigFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		if len(key) == 1 && key[0] == "tags" {
			continue
		}
		cws.Sources[key.String()] = source
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, key.String())
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	cfg.TodoFile = expandPath(cfg.TodoFile)
	cfg.DoneFile = expandPath(cfg.DoneFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)

	if cfg.TodoFile == "" {
		return fmt.Errorf("todo_file must not be empty")
	}

	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	// Make paths absolute if they're relative
	if !filepath.IsAbs(cfg.TodoFile) {
		cfg.TodoFile = filepath.Join(cfg.ProjectRoot, cfg.TodoFile)
	}
	if cfg.DoneFile == "" {
		cfg.DoneFile = filepath.Join(filepath.Dir(cfg.TodoFile), DefaultDoneFile)
	} else if !filepath.IsAbs(cfg.DoneFile) {
		cfg.DoneFile = filepath.Join(cfg.ProjectRoot, cfg.DoneFile)
	}
	if cfg.SchemaFile != "" && !filepath.IsAbs(cfg.SchemaFile) {
		cfg.SchemaFile = filepath.Join(cfg.ProjectRoot, cfg.SchemaFile)
	}

	if cfg.ListLimit < 0 {
		cfg.ListLimit = DefaultListLimit
	}
	if strings.TrimSpace(cfg.SortString) == "" {
		cfg.SortString = DefaultSortString
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}

	return nil
}
