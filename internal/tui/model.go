// Package tui is the interactive terminal view of a running simulation.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/render"
	"github.com/san-kum/organelle/internal/vec"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	minCols         = 20
	minRows         = 8
	sidebarWidth    = 42
	canvasOffsetX   = 2
	canvasOffsetY   = 1
	historyCapacity = 300
)

type TickMsg time.Time

type Options struct {
	Title     string
	FPS       int
	Smoothing bool
	Theme     string
	Render    render.Options
}

// Model steps the simulation on every tick and routes pointer and key
// input through the interaction controller.
type Model struct {
	sim    *engine.Simulation
	ctrl   *interact.Controller
	bridge *render.Bridge
	canvas *render.Canvas
	opts   Options
	theme  Theme
	styles styles

	baseWidth    float64
	running      bool
	focus        int
	speedHistory []float64
	err          error
	showHelp     bool
}

func NewModel(sim *engine.Simulation, ctrl *interact.Controller, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Title == "" {
		opts.Title = "organelle"
	}
	if opts.Render == (render.Options{}) {
		opts.Render = render.DefaultOptions()
	}
	bridge := render.NewBridge(opts.FPS, opts.Smoothing)
	sim.AddObserver(bridge)
	first := sim.Frame()
	bridge.OnFrame(first)
	ctrl.SetHitTester(bridge)

	theme := GetTheme(opts.Theme)
	return Model{
		sim:          sim,
		ctrl:         ctrl,
		bridge:       bridge,
		canvas:       render.NewCanvas(defaultCols, defaultRows),
		opts:         opts,
		theme:        theme,
		styles:       newStyles(theme),
		baseWidth:    first.Geometry.Width,
		running:      true,
		focus:        -1,
		speedHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.ctrl.Escape()
		case "tab":
			m.cycleFocus(1)
		case "shift+tab":
			m.cycleFocus(-1)
		case "enter":
			if ids := m.ctrl.IDs(); m.focus >= 0 && m.focus < len(ids) {
				m.ctrl.Click(ids[m.focus])
			}
		case " ":
			m.running = !m.running
		case "t":
			m.cycleTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		p, ok := m.cellToWorld(msg.X, msg.Y)
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if !ok {
				m.ctrl.ClickOutside()
			} else {
				m.ctrl.ClickAt(p)
			}
		case msg.Action == tea.MouseActionMotion && ok:
			m.ctrl.PointerMove(p)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running && m.err == nil {
			if err := m.sim.Step(time.Time(msg)); err != nil {
				m.err = err
			}
			m.recordSpeed()
		}
		return m, m.tick()
	}
	return m, nil
}

// Err returns the error that halted stepping, if any.
func (m Model) Err() error { return m.err }

func (m *Model) cycleFocus(dir int) {
	ids := m.ctrl.IDs()
	if len(ids) == 0 {
		return
	}
	if m.focus >= 0 && m.focus < len(ids) {
		m.ctrl.PointerLeave(ids[m.focus])
	}
	if m.focus < 0 && dir < 0 {
		m.focus = 0
	}
	m.focus = (m.focus + dir + len(ids)) % len(ids)
	m.ctrl.PointerEnter(ids[m.focus])
}

func (m *Model) cycleTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == m.theme.Name {
			m.theme = GetTheme(names[(i+1)%len(names)])
			m.styles = newStyles(m.theme)
			return
		}
	}
}

// resize fits the canvas to the terminal and reshapes the container so
// braille dots stay square. The container width is kept.
func (m *Model) resize(termW, termH int) {
	cols := termW - sidebarWidth - 2*canvasOffsetX - 1
	rows := termH - 2*canvasOffsetY
	if cols < minCols {
		cols = minCols
	}
	if rows < minRows {
		rows = minRows
	}
	m.canvas = render.NewCanvas(cols, rows)
	height := m.baseWidth * float64(rows*4) / float64(cols*2)
	m.sim.UpdateDimensions(m.baseWidth, height)
}

// cellToWorld maps a terminal cell to simulation coordinates. It reports
// false for cells outside the canvas.
func (m Model) cellToWorld(x, y int) (vec.Vec2, bool) {
	col, row := x-canvasOffsetX, y-canvasOffsetY
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return vec.Vec2{}, false
	}
	f, ok := m.bridge.Latest()
	if !ok {
		return vec.Vec2{}, false
	}
	g := f.Geometry
	dx := (float64(col) + 0.5) * 2
	dy := (float64(row) + 0.5) * 4
	screen := vec.New(dx*g.Width/float64(m.canvas.DotWidth()), dy*g.Height/float64(m.canvas.DotHeight()))
	return render.ToWorld(screen, g.Width, g.Height), true
}

func (m *Model) recordSpeed() {
	f, ok := m.bridge.Latest()
	if !ok || len(f.Entities) == 0 {
		return
	}
	sum := 0.0
	for _, e := range f.Entities {
		sum += e.Speed()
	}
	m.speedHistory = append(m.speedHistory, sum/float64(len(f.Entities)))
	if len(m.speedHistory) > historyCapacity {
		m.speedHistory = m.speedHistory[1:]
	}
}

func (m Model) View() string {
	view := m.ctrl.View()
	if sc, ok := m.bridge.Scene(view, m.opts.Render); ok {
		m.canvas.Render(sc)
	}
	canvasView := m.styles.canvas.Render(m.canvas.String())

	f, _ := m.bridge.Latest()
	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "HALTED: " + m.err.Error()
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.speedHistory) > 1 {
		chart := asciigraph.Plot(m.speedHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Mean speed"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	m.row(&s, "Frame", fmt.Sprintf("%d", f.Index))
	m.row(&s, "Elapsed", fmt.Sprintf("%.1fs", f.Elapsed.Seconds()))
	m.row(&s, "Membrane", f.Geometry.Shape.String())
	if f.Radius > 0 {
		m.row(&s, "Radius", fmt.Sprintf("%.2f", f.Radius))
	}
	metrics := m.sim.Metrics()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.row(&s, name, fmt.Sprintf("%.3f", metrics[name]))
	}

	s.WriteString("\nENTITIES\n")
	ids := m.ctrl.IDs()
	for i, id := range ids {
		line := fmt.Sprintf("%-14s %s", id, view.Class(id))
		if i == m.focus {
			s.WriteString(m.styles.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.styles.value.Render(line) + "\n")
		}
	}

	if view.ModalOpen() {
		for _, e := range f.Entities {
			if e.ID != view.Active {
				continue
			}
			s.WriteString("\n" + m.styles.active.Render(strings.ToUpper(e.ID)) + "\n")
			m.row(&s, "Radius", fmt.Sprintf("%.1f", e.Radius))
			m.row(&s, "Position", fmt.Sprintf("%.0f, %.0f", e.Position.X, e.Position.Y))
		}
	}

	s.WriteString(m.styles.help.Render("─────────────────────\nClick:Open  Esc:Close  Q:Quit\nTab:Focus  Enter:Open  SP:Pause\nT:Theme  ?:Help"))
	layout := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + layout
	}
	return layout
}

func (m Model) row(s *strings.Builder, label, value string) {
	s.WriteString(m.styles.label.Render(label) + m.styles.value.Render(value) + "\n")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD AND MOUSE          ║
╠══════════════════════════════════════╣
║  Click    - Open an organelle        ║
║  Esc      - Close the detail view    ║
║  Tab      - Focus next organelle     ║
║  Enter    - Open focused organelle   ║
║  Space    - Pause/Resume             ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
