// Package tui is the terminal client: a chip strip, a braille map canvas and
// a card list, all driven by one compare session.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/ports"
	"github.com/samirrijal/openroute/internal/core/usecases"
	"github.com/samirrijal/openroute/internal/pkg/units"
)

var (
	appStyle    = lipgloss.NewStyle()
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	activeStyle = lipgloss.NewStyle().Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6B7280"))
)

// Layout rows above and below the map.
const (
	headerRows = 3 // title, request form, chip strip
	footerRows = 1
	cardsWidth = 38
)

const (
	inputStart = iota
	inputEnd
)

// suggestionsMsg carries the outcome of a ranking request.
type suggestionsMsg struct {
	resp *domain.SuggestionResponse
	err  error
}

// Options configures a Model.
type Options struct {
	Ranker         ports.Ranker
	Timeout        time.Duration
	Start          string
	End            string
	MaxSuggestions int
	Preferences    domain.Preferences // zero means the backend defaults
}

// Model is the Bubble Tea model of the terminal client.
type Model struct {
	session *usecases.CompareSession
	canvas  *Canvas
	opts    Options

	inputs  []textinput.Model
	focus   int
	editing bool

	view   usecases.SessionView
	cursor int // focused card

	width  int
	height int
	status string
}

// NewModel wraps a session whose surface is canvas.
func NewModel(session *usecases.CompareSession, canvas *Canvas, opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = usecases.DefaultMaxSuggestions
	}
	if opts.Preferences == (domain.Preferences{}) {
		opts.Preferences = usecases.DefaultRequest().Preferences
	}

	start := textinput.New()
	start.Prompt = "start "
	start.Placeholder = "lat,lon"
	start.CharLimit = 48
	start.Width = 22
	start.SetValue(opts.Start)

	end := textinput.New()
	end.Prompt = "end "
	end.Placeholder = "lat,lon"
	end.CharLimit = 48
	end.Width = 22
	end.SetValue(opts.End)

	return Model{
		session: session,
		canvas:  canvas,
		opts:    opts,
		inputs:  []textinput.Model{start, end},
		view:    session.View(),
		status:  "press e to edit the request, r to request suggestions",
	}
}

func (m Model) Init() tea.Cmd { return nil }

// SessionView returns the session view the model last rendered.
func (m Model) SessionView() usecases.SessionView {
	return m.view
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		_, _, cols, rows := m.mapArea()
		m.canvas.Resize(cols, rows)
		return m, nil

	case suggestionsMsg:
		if msg.err != nil {
			m.session.ApplyFailure(msg.err)
			m.status = "request failed"
		} else {
			view := m.session.ApplyResponse(context.Background(), msg.resp)
			m.status = fmt.Sprintf("%d suggestions", len(view.Cards))
			m.cursor = 0
		}
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		x, y, cols, rows := m.mapArea()
		col, row := msg.X-x, msg.Y-y
		if col < 0 || row < 0 || col >= cols || row >= rows {
			return m, nil
		}
		changed, view := m.session.ClickMap(context.Background(), m.canvas.CellPoint(col, row))
		m.view = view
		if changed {
			m.cursor = m.activeIndex()
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m.submit()
	case "e":
		m.editing = true
		m.status = "tab switches field, enter submits, esc cancels"
		return m, m.inputs[m.focus].Focus()
	case "left", "h":
		m.selectChip(m.activeIndex() - 1)
	case "right", "l":
		m.selectChip(m.activeIndex() + 1)
	case "1", "2", "3", "4", "5", "6":
		n, _ := strconv.Atoi(key)
		m.selectChip(n - 1)
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.view.Cards)-1, 0))
	case "enter", " ":
		if m.cursor < len(m.view.Cards) {
			m.selectOn(usecases.SurfaceCard, m.view.Cards[m.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.stopEditing()
		m.status = ""
		return m, nil
	case "enter":
		m.stopEditing()
		return m.submit()
	case "tab", "shift+tab":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.inputs[m.focus].Focus()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// submit starts a ranking request. The request runs as a command and its
// outcome comes back as a suggestionsMsg.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.view.Pending {
		m.status = "a request is already in flight"
		return m, nil
	}

	req := usecases.DefaultRequest()
	req.Start = m.inputs[inputStart].Value()
	req.End = m.inputs[inputEnd].Value()
	req.MaxSuggestions = m.opts.MaxSuggestions
	req.Preferences = m.opts.Preferences
	norm, err := usecases.NormalizeRequest(req)
	if err != nil {
		m.session.ApplyFailure(err)
		m.refresh()
		return m, nil
	}
	if m.opts.Ranker == nil {
		m.status = "no ranking backend configured"
		return m, nil
	}
	if err := m.session.BeginRequest(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "requesting suggestions..."
	m.refresh()

	ranker, timeout := m.opts.Ranker, m.opts.Timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := ranker.Suggest(ctx, norm)
		if err != nil {
			slog.Warn("suggest failed", "error", err)
		}
		return suggestionsMsg{resp: resp, err: err}
	}
}

func (m *Model) selectChip(i int) {
	if i < 0 || i >= len(m.view.Chips) {
		return
	}
	m.selectOn(usecases.SurfaceChip, m.view.Chips[i].ID)
}

func (m *Model) selectOn(surface, id string) {
	changed, view := m.session.Select(context.Background(), surface, id)
	m.view = view
	if changed {
		m.cursor = m.activeIndex()
	}
}

func (m *Model) refresh() {
	m.view = m.session.View()
	m.cursor = min(m.cursor, max(len(m.view.Cards)-1, 0))
}

// activeIndex returns the chip index of the active suggestion, or -1.
func (m Model) activeIndex() int {
	for i, c := range m.view.Chips {
		if c.Active {
			return i
		}
	}
	return -1
}

// mapArea returns the origin and size in cells of the map canvas.
func (m Model) mapArea() (x, y, cols, rows int) {
	cols = max(m.width-cardsWidth-1, 10)
	rows = max(m.height-headerRows-footerRows, 4)
	return 0, headerRows, cols, rows
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	_, _, cols, rows := m.mapArea()

	// Header lines are cut, never wrapped, so the map stays at headerRows.
	line := lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(1)
	header := lipgloss.JoinVertical(lipgloss.Left,
		line.Render(titleStyle.Render(" openroute ")+dimStyle.Render(" "+m.view.Summary)),
		line.Render(m.renderForm()),
		line.Render(m.renderChips()),
	)

	mapView := lipgloss.NewStyle().Width(cols).Height(rows).Render(m.canvas.Render())
	cards := panelStyle.Width(cardsWidth - 2).Height(rows - 2).Render(m.renderCards(rows - 2))
	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, " ", cards)

	status := dimStyle.Render(" " + m.status)
	if m.view.Error != "" {
		status = errorStyle.Render(" " + m.view.Error)
	}
	help := dimStyle.Render("  ←→/1-6 route  ↑↓ card  enter select  e edit  r request  q quit")
	footer := lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(status + help)

	return appStyle.Width(m.width).Height(m.height).Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) renderForm() string {
	p := m.opts.Preferences
	form := " " + m.inputs[inputStart].View() + "  " + m.inputs[inputEnd].View() +
		dimStyle.Render(fmt.Sprintf("  fitness %s scenic %s avoid main %s time %s",
			units.Percent(p.FitnessLevel), units.Percent(p.ScenicPreference),
			units.Percent(p.AvoidMainRoads), units.Percent(p.TimePriority)))
	if m.view.Pending {
		form += dimStyle.Render("  loading...")
	}
	return form
}

func (m Model) renderChips() string {
	if len(m.view.Chips) == 0 {
		return dimStyle.Render(" no routes")
	}
	parts := make([]string, 0, len(m.view.Chips))
	for i, c := range m.view.Chips {
		label := fmt.Sprintf(" %d %s ", i+1, c.ID)
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color))
		if c.Active {
			st = st.Reverse(true).Bold(true)
		}
		parts = append(parts, st.Render(label))
	}
	return " " + strings.Join(parts, " ")
}

func (m Model) renderCards(height int) string {
	if len(m.view.Cards) == 0 {
		if m.view.Responded {
			return dimStyle.Render("No suggestions returned.")
		}
		return dimStyle.Render("No suggestions yet.")
	}

	var head string
	if meta := m.view.Meta; meta != nil {
		head = dimStyle.Render(metaLine(meta))
		height--
	}

	var lines []string
	for i, c := range m.view.Cards {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("▌")
		title := fmt.Sprintf("%s %s", c.ID, c.Labels.Score)
		if c.Active {
			title = activeStyle.Render(title + " (active)")
		}
		lines = append(lines,
			cursor+bar+" "+title,
			"    "+fmt.Sprintf("%s · %s · ↑%s", c.Labels.Distance, c.Labels.ETA, c.Labels.Ascent),
			"    "+dimStyle.Render(fmt.Sprintf("scenic %s · main roads %s", c.Labels.Scenic, c.Labels.MainRoads)),
		)
		if !c.Drawable {
			lines = append(lines, "    "+dimStyle.Render("route not drawable"))
		}
	}

	// Keep the focused card in view.
	start := 0
	if len(lines) > height {
		start = min(m.cursor*3, len(lines)-height)
	}
	end := min(start+height, len(lines))
	body := strings.Join(lines[start:end], "\n")
	if head != "" {
		return head + "\n" + body
	}
	return body
}

// metaLine reports how many candidate paths the backend ranked.
func metaLine(meta *domain.ResponseMeta) string {
	return fmt.Sprintf("Received %d paths, returning %d", meta.SourcePaths, meta.ReturnedSuggestions)
}
