package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/gantt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ── key bindings ─────────────────────────────────────────────────────────────

type ganttKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Earlier     key.Binding
	Later       key.Binding
	Move        key.Binding
	ResizeStart key.Binding
	ResizeEnd   key.Binding
	Drop        key.Binding
	Cancel      key.Binding
	Zoom        key.Binding
	Refresh     key.Binding
	Quit        key.Binding
}

func defaultGanttKeys() ganttKeyMap {
	return ganttKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Earlier:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "day earlier")),
		Later:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "day later")),
		Move:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		ResizeStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "resize start")),
		ResizeEnd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "resize end")),
		Drop:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Zoom:        key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

// ganttDroppedMsg reports a committed drag or shift.
type ganttDroppedMsg struct {
	drop gantt.Drop
	err  error
}

// ganttRefreshedMsg reports a re-fetch of the object's elements.
type ganttRefreshedMsg struct {
	err error
}

// ── view ─────────────────────────────────────────────────────────────────────

// ganttModel is the interactive timeline of one object. Bars are dragged
// with the keyboard: m, [ or ] picks up the selected bar, h/l move the
// pointer one day at a time and enter drops it.
type ganttModel struct {
	ctx      context.Context
	app      *App
	objectID string
	keys     ganttKeyMap

	chart  gantt.Chart
	cursor int
	width  int

	// dragX is the pointer offset of the current drag, in chart pixels.
	dragX  float64
	status string
	err    error
}

func newGanttModel(ctx context.Context, app *App, objectID string) *ganttModel {
	m := &ganttModel{ctx: ctx, app: app, objectID: objectID, keys: defaultGanttKeys()}
	m.rebuild()
	return m
}

func (m *ganttModel) Init() tea.Cmd { return nil }

func (m *ganttModel) ShortHelp() []key.Binding {
	if m.app.Session.Gantt.Dragging() {
		return []key.Binding{m.keys.Earlier, m.keys.Later, m.keys.Drop, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.Earlier, m.keys.Later,
		m.keys.Move, m.keys.ResizeStart, m.keys.ResizeEnd,
		m.keys.Zoom, m.keys.Refresh, m.keys.Quit,
	}
}

// rebuild lays the chart out again, keeping the cursor in range.
func (m *ganttModel) rebuild() {
	m.chart = m.app.Session.Gantt.Chart(m.objectID, m.app.today())
	if m.cursor >= len(m.chart.Rows) {
		m.cursor = max(len(m.chart.Rows)-1, 0)
	}
}

func (m *ganttModel) selected() (gantt.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.chart.Rows) {
		return gantt.Row{}, false
	}
	return m.chart.Rows[m.cursor], true
}

func (m *ganttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case ganttDroppedMsg:
		m.err = msg.err
		m.status = ""
		if msg.err == nil {
			m.status = dropSummary(msg.drop)
		}
		m.rebuild()
		return m, nil

	case ganttRefreshedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Refreshed."
		}
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ganttModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := m.app.Session.Gantt
	day := gantt.ColumnWidth(engine.Zoom())

	if engine.Dragging() {
		switch {
		case key.Matches(msg, m.keys.Earlier):
			m.pointerMove(m.dragX - day)
		case key.Matches(msg, m.keys.Later):
			m.pointerMove(m.dragX + day)
		case key.Matches(msg, m.keys.Drop):
			return m, m.releaseCmd(m.dragX)
		case key.Matches(msg, m.keys.Cancel):
			// Releasing where the drag started changes nothing.
			_, m.err = engine.Release(m.ctx, 0)
			m.status = "Drag cancelled."
			m.rebuild()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.chart.Rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Earlier):
		return m, m.shiftCmd(-1)
	case key.Matches(msg, m.keys.Later):
		return m, m.shiftCmd(1)
	case key.Matches(msg, m.keys.Move):
		m.pointerDown(gantt.DragMove)
	case key.Matches(msg, m.keys.ResizeStart):
		m.pointerDown(gantt.DragResizeStart)
	case key.Matches(msg, m.keys.ResizeEnd):
		m.pointerDown(gantt.DragResizeEnd)
	case key.Matches(msg, m.keys.Zoom):
		m.err = engine.SetZoom(nextZoom(engine.Zoom()))
		m.rebuild()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m *ganttModel) pointerDown(kind gantt.DragKind) {
	row, ok := m.selected()
	if !ok {
		return
	}
	if !row.HasBar {
		m.err = fmt.Errorf("%s has no dates to drag", row.Element.Title)
		return
	}
	m.err = m.app.Session.Gantt.PointerDown(kind, row.Element.ID, 0)
	m.dragX = 0
	m.status = fmt.Sprintf("Dragging %s (%s)", row.Element.Title, kind)
	m.rebuild()
}

func (m *ganttModel) pointerMove(x float64) {
	m.dragX = x
	if s, ok := m.app.Session.Gantt.PointerMove(x); ok {
		m.status = fmt.Sprintf("%s → %s", domain.FormatDay(s.CurrentStart), domain.FormatDay(s.CurrentEnd))
	}
	m.rebuild()
}

func (m *ganttModel) releaseCmd(x float64) tea.Cmd {
	return func() tea.Msg {
		var drop gantt.Drop
		err := m.app.Session.Run(m.ctx, "drag-element", map[string]any{"object_id": m.objectID}, func(ctx context.Context) error {
			var err error
			drop, err = m.app.Session.Gantt.Release(ctx, x)
			return err
		})
		return ganttDroppedMsg{drop: drop, err: err}
	}
}

func (m *ganttModel) shiftCmd(days int) tea.Cmd {
	row, ok := m.selected()
	if !ok || !row.HasBar {
		return nil
	}
	id := row.Element.ID
	return func() tea.Msg {
		drop, err := shiftElement(m.ctx, m.app, id, gantt.DragMove, days)
		return ganttDroppedMsg{drop: drop, err: err}
	}
}

func (m *ganttModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return ganttRefreshedMsg{err: m.app.Session.Gantt.Refresh(m.ctx)}
	}
}

func nextZoom(z gantt.Zoom) gantt.Zoom {
	switch z {
	case gantt.ZoomDay:
		return gantt.ZoomWeek
	case gantt.ZoomWeek:
		return gantt.ZoomMonth
	default:
		return gantt.ZoomDay
	}
}

func dropSummary(d gantt.Drop) string {
	if !d.Changed() {
		return "No change."
	}
	return fmt.Sprintf("Saved %s → %s", domain.FormatDay(d.Start), domain.FormatDay(d.End))
}

func (m *ganttModel) View() string {
	var b strings.Builder

	b.WriteString(formatter.FormatBreadcrumb(m.app.Session.Objects.Breadcrumb(m.objectID)) + "\n\n")

	opts := formatter.GanttOptions{}
	if row, ok := m.selected(); ok {
		opts.Selected = row.Element.ID
	}
	if m.width > 0 {
		// label, gap and risk tag around the track
		opts.MaxWidth = max(m.width-24-14, 10)
	}
	b.WriteString(formatter.FormatGantt(m.chart, opts))

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(formatter.StyleGreen.Render(m.status) + "\n")
	}

	hints := make([]string, 0, len(m.ShortHelp()))
	for _, k := range m.ShortHelp() {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	b.WriteString(strings.Join(hints, "  ") + "\n")
	return b.String()
}
