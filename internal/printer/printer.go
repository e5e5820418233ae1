// Package printer renders views of a task list for the terminal and for
// other programs.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tdtxt/internal/view"
)

// Output formats.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatDot   = "dot"
)

// Printer writes the tasks of a view to w.
type Printer interface {
	Print(w io.Writer, v *view.View) error
}

// Options configures the printers built by New.
type Options struct {
	// Colors enables ANSI styling in plain output.
	Colors bool
	// SchemaFile replaces the embedded JSON schema used to check JSON output.
	SchemaFile string
}

// Formats returns the accepted format names.
func Formats() []string {
	return []string{FormatPlain, FormatJSON, FormatYAML, FormatDot}
}

// New returns the printer for format.
func New(format string, opts Options) (Printer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPlain, "text":
		return &Plain{Colors: opts.Colors}, nil
	case FormatJSON:
		return &JSON{SchemaFile: opts.SchemaFile}, nil
	case FormatYAML, "yml":
		return &YAML{}, nil
	case FormatDot:
		return &Dot{Text: true}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %s", format, strings.Join(Formats(), ", "))
	}
}
