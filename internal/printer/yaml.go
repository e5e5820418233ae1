package printer

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tdtxt/internal/view"
)

// YAML prints a sequence of records.
type YAML struct{}

// Print implements Printer.
func (p *YAML) Print(w io.Writer, v *view.View) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Records(v)); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return enc.Close()
}
