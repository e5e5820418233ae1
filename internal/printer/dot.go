package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tdtxt/internal/graph"
	"github.com/nibzard/tdtxt/internal/view"
)

// Dot prints the dependency graph between the tasks of a view in
// Graphviz format. Edges to tasks outside the view are left out.
type Dot struct {
	// Text labels each node with its task text instead of the bare number.
	Text bool
}

// Print implements Printer.
func (p *Dot) Print(w io.Writer, v *view.View) error {
	full := v.List().DependencyGraph()
	sub := graph.New[int]()
	inView := make(map[int]bool, v.Len())
	for _, t := range v.Tasks() {
		n := v.Number(t)
		inView[n] = true
		sub.AddNode(n)
	}
	for _, e := range full.Edges() {
		if inView[e.From] && inView[e.To] {
			sub.AddEdge(e.From, e.To, e.ID)
		}
	}

	if !p.Text {
		_, err := io.WriteString(w, sub.Dot(true))
		return err
	}

	var b strings.Builder
	b.WriteString("digraph tdtxt {\n")
	b.WriteString("  node [shape=box, fontname=Helvetica, fontsize=10]\n")
	for _, t := range v.Tasks() {
		n := v.Number(t)
		style := ""
		if t.Completed() {
			style = ", style=dashed"
		}
		fmt.Fprintf(&b, "  %d [label=%q%s]\n", n, fmt.Sprintf("%d %s", n, t.Text()), style)
	}
	for _, e := range sub.Edges() {
		fmt.Fprintf(&b, "  %d -> %d\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
