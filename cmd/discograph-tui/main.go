// Command discograph-tui animates a discograph layout in the terminal
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/discograph-layout/pkg/config"
	"github.com/dd0wney/discograph-layout/pkg/graph"
	"github.com/dd0wney/discograph-layout/pkg/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2)

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Select key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Drop   key.Binding
	Pause  key.Binding
	Reheat key.Binding
	Focus  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	Prev:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	Select: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select node")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "drag up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "drag down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "drag left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "drag right")),
	Drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "release")),
	Pause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Reheat: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
	Focus:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Select, k.Pause, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Select, k.Focus},
		{k.Up, k.Down, k.Left, k.Right, k.Drop},
		{k.Pause, k.Reheat, k.Quit},
	}
}

// dragStep is how far one arrow key press moves the dragged node, in pixels
const dragStep = 25

type model struct {
	sess     *session.Session
	help     help.Model
	keys     keyMap
	width    int
	height   int
	selected int
	dragging bool
	message  string
	isErr    bool
}

type tickMsg time.Time

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.sess.Config().Simulation.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.sess.Tick()
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.release()
			d := m.sess.NextPage()
			m.selected = 0
			m.note(fmt.Sprintf("page %d / %d", d.CurrentPage, d.PageCount))

		case key.Matches(msg, m.keys.Prev):
			m.release()
			d := m.sess.PrevPage()
			m.selected = 0
			m.note(fmt.Sprintf("page %d / %d", d.CurrentPage, d.PageCount))

		case key.Matches(msg, m.keys.Select):
			m.release()
			if n := len(m.sess.Page().Nodes); n > 0 {
				m.selected = (m.selected + 1) % n
			}

		case key.Matches(msg, m.keys.Up):
			m.drag(0, -dragStep)
		case key.Matches(msg, m.keys.Down):
			m.drag(0, dragStep)
		case key.Matches(msg, m.keys.Left):
			m.drag(-dragStep, 0)
		case key.Matches(msg, m.keys.Right):
			m.drag(dragStep, 0)

		case key.Matches(msg, m.keys.Drop):
			m.release()

		case key.Matches(msg, m.keys.Pause):
			if m.sess.Running() {
				m.sess.Stop()
				m.note("paused")
			} else {
				m.sess.Restart()
				m.note("running")
			}

		case key.Matches(msg, m.keys.Reheat):
			m.sess.Restart()
			m.note("reheated")

		case key.Matches(msg, m.keys.Focus):
			if n := m.selectedNode(); n != nil {
				m.check(m.sess.FocusNode(n.Key))
				m.note("new nodes will appear around " + label(n))
			}
		}
	}
	return m, nil
}

func (m *model) selectedNode() *graph.Node {
	nodes := m.sess.Page().Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[m.selected%len(nodes)]
}

func (m *model) drag(dx, dy float64) {
	n := m.selectedNode()
	if n == nil {
		return
	}
	x, y := n.X+dx, n.Y+dy
	if !m.dragging {
		m.dragging = m.check(m.sess.DragStart(n.Key, x, y))
		return
	}
	m.check(m.sess.DragMove(n.Key, x, y))
}

func (m *model) release() {
	if !m.dragging {
		return
	}
	m.dragging = false
	if n := m.selectedNode(); n != nil {
		m.check(m.sess.DragEnd(n.Key))
	}
}

func (m *model) note(s string) {
	m.message, m.isErr = s, false
}

func (m *model) check(err error) bool {
	if err != nil {
		m.message, m.isErr = err.Error(), true
		return false
	}
	return true
}

func label(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.Key
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("discograph ◦ " + m.sess.Model().Center().Key))
	b.WriteString("\n")

	w, h := m.width-2, m.height-8
	if w > 10 && h > 5 {
		b.WriteString(canvasStyle.Render(m.renderCanvas(w, h)))
		b.WriteString("\n")
	}

	d := m.sess.Page()
	state := "idle"
	if m.sess.Running() {
		state = fmt.Sprintf("alpha %.3f", m.sess.Alpha())
	}
	status := fmt.Sprintf("page %d/%d · %d nodes · %d links · %s",
		d.CurrentPage, d.PageCount, len(d.Nodes), len(d.Links), state)
	if n := m.selectedNode(); n != nil {
		status += " · selected " + label(n)
		if n.HasMissing {
			status += fmt.Sprintf(" (+%d)", n.Missing)
		}
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	if m.message != "" {
		if m.isErr {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(statusStyle.Render(m.message))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderCanvas scales the viewport onto a w x h character grid. Relations
// are dotted through their waypoints; entities are drawn over them.
func (m model) renderCanvas(w, h int) string {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", w))
	}

	vp := m.sess.Config().Viewport
	cell := func(x, y float64) (int, int, bool) {
		cx := int(x / vp.Width * float64(w))
		cy := int(y / vp.Height * float64(h))
		return cx, cy, cx >= 0 && cx < w && cy >= 0 && cy < h
	}
	line := func(a, b *graph.Node) {
		steps := int(math.Max(math.Abs(a.X-b.X)/vp.Width*float64(w), math.Abs(a.Y-b.Y)/vp.Height*float64(h)))
		for i := 1; i < steps; i++ {
			t := float64(i) / float64(steps)
			if x, y, ok := cell(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t); ok {
				grid[y][x] = '·'
			}
		}
	}

	d := m.sess.Page()
	for _, e := range d.Splines {
		if e.Source != nil && e.Target != nil {
			line(e.Source, e.Target)
		}
	}
	for _, e := range d.Links {
		if e.Intermediate == nil && e.Source != nil && e.Target != nil {
			line(e.Source, e.Target)
		}
	}

	center := m.sess.Model().Center().Key
	selected := m.selectedNode()
	for _, n := range d.Nodes {
		x, y, ok := cell(n.X, n.Y)
		if !ok {
			continue
		}
		glyph := 'o'
		switch {
		case n == selected:
			glyph = '◉'
		case n.Key == center:
			glyph = '@'
		case n.Kind == graph.KindLabel:
			glyph = '#'
		}
		grid[y][x] = glyph
	}

	rows := make([]string, h)
	for i, r := range grid {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults when empty)")
	logPath := flag.String("log", "", "Write JSON logs to this file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] payload.json [payload.json...]\n", os.Args[0])
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// the terminal belongs to the UI
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			log.Fatalf("Failed to open log: %v", err)
		}
		defer f.Close()
		out = f
	}
	logger := cfg.Logger(out)

	sess, err := session.New(cfg, session.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read payload: %v", err)
		}
		if _, err := sess.ApplyJSON(sess.BeginRequest(), data); err != nil {
			log.Fatalf("Failed to apply %s: %v", path, err)
		}
	}

	m := model{sess: sess, help: help.New(), keys: keys}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
