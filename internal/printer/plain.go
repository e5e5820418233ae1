package printer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

// Plain prints one numbered todo.txt line per task. Numbers are padded to
// the width of the largest number in the list.
type Plain struct {
	Colors bool
}

type plainStyles struct {
	number    lipgloss.Style
	priority  map[byte]lipgloss.Style
	completed lipgloss.Style
	overdue   lipgloss.Style
}

func newPlainStyles(w io.Writer) plainStyles {
	r := lipgloss.NewRenderer(w)
	return plainStyles{
		number: r.NewStyle().Foreground(lipgloss.Color("243")),
		priority: map[byte]lipgloss.Style{
			'A': r.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true),
			'B': r.NewStyle().Foreground(lipgloss.Color("#FAB387")),
			'C': r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		},
		completed: r.NewStyle().Foreground(lipgloss.Color("241")),
		overdue:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Underline(true),
	}
}

// Print implements Printer.
func (p *Plain) Print(w io.Writer, v *view.View) error {
	width := len(strconv.Itoa(v.List().Count()))
	var styles plainStyles
	if p.Colors {
		styles = newPlainStyles(w)
	}
	for _, t := range v.Tasks() {
		num := fmt.Sprintf("%*d", width, v.Number(t))
		line := t.Source()
		if p.Colors {
			num = styles.number.Render(num)
			line = styles.line(t)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", num, line); err != nil {
			return err
		}
	}
	return nil
}

func (s plainStyles) line(t *todo.Task) string {
	switch {
	case t.Completed():
		return s.completed.Render(t.Source())
	case t.IsOverdue():
		return s.overdue.Render(t.Source())
	}
	if style, ok := s.priority[t.Priority()]; ok {
		return style.Render(t.Source())
	}
	return t.Source()
}
