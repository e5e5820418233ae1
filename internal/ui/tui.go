// Package ui provides the interactive terminal task browser.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tdtxt/internal/config"
	"github.com/nibzard/tdtxt/internal/todo"
	"github.com/nibzard/tdtxt/internal/view"
)

// LoadFunc reads the current task list. The browser calls it on start and
// on every reload.
type LoadFunc func() (*todo.List, error)

// RunTUI starts the browser on the terminal.
func RunTUI(ctx context.Context, cfg *config.Config, load LoadFunc) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(newTUIModel(cfg, load), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EE6FF8")).
			Bold(true)
	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))
)

type tuiModel struct {
	cfg        *config.Config
	load       LoadFunc
	sorter     *view.Sorter
	list       *todo.List
	view       *view.View
	loadErr    error
	cursor     int
	height     int
	relevance  bool
	dependency bool
	showAll    bool
	showHelp   bool
}

func newTUIModel(cfg *config.Config, load LoadFunc) *tuiModel {
	sortExpr := view.DefaultSort
	ignoreWeekends := false
	if cfg != nil {
		if cfg.SortString != "" {
			sortExpr = cfg.SortString
		}
		ignoreWeekends = cfg.IgnoreWeekends
	}
	return &tuiModel{
		cfg:        cfg,
		load:       load,
		sorter:     view.NewSorter(sortExpr, view.IgnoreWeekends(ignoreWeekends)),
		dependency: true,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.move(m.count())
		case "r":
			m.relevance = !m.relevance
			m.applyFilters()
		case "d":
			m.dependency = !m.dependency
			m.applyFilters()
		case "a":
			m.showAll = !m.showAll
			m.applyFilters()
		case "R", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading todo file:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}
	if m.view == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b)
		return b.String()
	}

	m.writeStatus(&b)
	m.writeTasks(&b)
	m.writeDetails(&b)
	writeFooter(&b)
	return b.String()
}

// refresh reloads the list and keeps the cursor in range.
func (m *tuiModel) refresh() {
	list, err := m.load()
	if err != nil {
		m.loadErr = err
		m.list, m.view = nil, nil
		return
	}
	m.loadErr = nil
	m.list = list
	m.applyFilters()
}

func (m *tuiModel) applyFilters() {
	if m.list == nil {
		return
	}
	var filters []view.Filter
	if !m.showAll {
		filters = append(filters, view.Active(), view.HiddenTag())
	}
	if m.dependency {
		filters = append(filters, view.Dependency(m.list))
	}
	if m.relevance {
		filters = append(filters, view.Relevance())
	}
	m.view = view.New(m.list, m.sorter, filters...)
	m.move(0)
}

func (m *tuiModel) count() int {
	if m.view == nil {
		return 0
	}
	return m.view.Len()
}

func (m *tuiModel) move(delta int) {
	m.cursor += delta
	if m.cursor >= m.count() {
		m.cursor = m.count() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the task under the cursor, or nil for an empty view.
func (m *tuiModel) selected() *todo.Task {
	if m.count() == 0 {
		return nil
	}
	return m.view.Tasks()[m.cursor]
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("tdtxt") + "\n\n")
}

func (m *tuiModel) writeStatus(b *strings.Builder) {
	var on []string
	if m.relevance {
		on = append(on, "relevance")
	}
	if m.dependency {
		on = append(on, "dependency")
	}
	if m.showAll {
		on = append(on, "all")
	}
	filters := "none"
	if len(on) > 0 {
		filters = strings.Join(on, ", ")
	}
	fmt.Fprintf(b, "%d of %d tasks | filters: %s | sort: %s\n\n",
		m.count(), m.list.Count(), filters, m.sorter.String())
}

// visibleRange returns the slice of tasks that fits the window, keeping the
// cursor on screen.
func (m *tuiModel) visibleRange() (int, int) {
	rows := m.count()
	if m.height > 0 {
		rows = max(m.height-14, 3)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, m.count())
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	if m.count() == 0 {
		b.WriteString("  No tasks to show.\n\n")
		return
	}
	width := len(fmt.Sprint(m.list.Count()))
	start, end := m.visibleRange()
	tasks := m.view.Tasks()
	for i := start; i < end; i++ {
		t := tasks[i]
		line := fmt.Sprintf("%*d %s", width, m.view.Number(t), t.Source())
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
			continue
		case t.Completed():
			line = completedStyle.Render(line)
		case t.IsOverdue():
			line = overdueStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeDetails(b *strings.Builder) {
	t := m.selected()
	if t == nil {
		return
	}
	n := m.view.Number(t)
	fmt.Fprintf(b, "Task %d: %s\n", n, t.Text())
	if d, ok := t.DueDate(); ok {
		fmt.Fprintf(b, "  Due:        %s (%d days)\n", d.Format(todo.DateLayout), t.DaysTillDue())
	}
	if d, ok := t.StartDate(); ok {
		fmt.Fprintf(b, "  Start:      %s\n", d.Format(todo.DateLayout))
	}
	fmt.Fprintf(b, "  Importance: %d\n", t.Importance(m.cfg != nil && m.cfg.IgnoreWeekends))
	if parents := m.list.Parents(n, true); len(parents) > 0 {
		fmt.Fprintf(b, "  Parents:    %s\n", numbers(m.list, parents))
	}
	if children := m.list.Children(n, true); len(children) > 0 {
		fmt.Fprintf(b, "  Children:   %s\n", numbers(m.list, children))
	}
	b.WriteString("\n")
}

func numbers(l *todo.List, tasks []*todo.Task) string {
	parts := make([]string, len(tasks))
	for i, t := range tasks {
		parts[i] = fmt.Sprint(l.Number(t))
	}
	return strings.Join(parts, ", ")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  j, k         Move down, up\n")
	b.WriteString("  g, G         Jump to top, bottom\n")
	b.WriteString("  r            Toggle relevance filter\n")
	b.WriteString("  d            Toggle dependency filter\n")
	b.WriteString("  a            Toggle completed and hidden tasks\n")
	b.WriteString("  R, F5        Reload the todo file\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(helpStyle.Render("Press h for help | q to quit") + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
