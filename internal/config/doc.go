// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.tdtxt/tdtxt.toml or OS-specific config directory)
// 3. Project config file (tdtxt.toml or .tdtxt.toml in the current directory)
// 4. Environment variables (TDTXT_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
// A file named with --config (or TDTXT_CONFIG) replaces the project file
// lookup.
//
// User-level config locations:
// - ~/.tdtxt/tdtxt.toml (preferred)
// - Windows: %APPDATA%\tdtxt\tdtxt.toml
// - macOS: ~/Library/Application Support/tdtxt/tdtxt.toml
// - Linux/BSD: $XDG_CONFIG_HOME/tdtxt/tdtxt.toml or ~/.config/tdtxt/tdtxt.toml
package config
