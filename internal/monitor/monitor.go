// Package monitor implements the live dashboard TUI: current readings with
// trend badges, the connection status and the history panel, all fed by a
// dashboard.Hub.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/climadash/internal/chart"
	"github.com/luki/climadash/internal/dashboard"
	"github.com/luki/climadash/internal/feed"
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/store"
	"github.com/luki/climadash/internal/theme"
	"github.com/luki/climadash/internal/trend"
	"github.com/luki/climadash/internal/viewer"
)

const (
	refreshInterval = 5 * time.Second
	flashDuration   = 500 * time.Millisecond
)

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type updateMsg feed.Update

type statusMsg dashboard.Status

type flashDoneMsg struct{ seq int }

type themeFlashDoneMsg struct{}

// ── Sink ─────────────────────────────────────────────────────────────

type programSink struct{ p *tea.Program }

// Sink forwards hub events into a running program as messages.
func Sink(p *tea.Program) dashboard.Sink {
	return programSink{p: p}
}

func (s programSink) OnUpdate(u feed.Update) { s.p.Send(updateMsg(u)) }

func (s programSink) OnStatus(st dashboard.Status) { s.p.Send(statusMsg(st)) }

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live dashboard.
type Model struct {
	hub        *dashboard.Hub
	prefs      *store.PrefStore
	mode       theme.Mode
	status     dashboard.Status
	latest     feed.Update
	hasLatest  bool
	panel      viewer.Panel
	help       help.Model
	err        error
	width      int
	height     int
	flashSeq   int
	flashing   bool
	themeFlash bool
	startTime  time.Time
}

// New builds the model from the hub's current state and the stored
// preferences. prefs may be nil.
func New(hub *dashboard.Hub, prefs *store.PrefStore) Model {
	m := Model{
		hub:       hub,
		prefs:     prefs,
		status:    hub.Status(),
		help:      help.New(),
		startTime: time.Now(),
	}

	var p store.Prefs
	if prefs != nil {
		var err error
		if p, err = prefs.Load(); err != nil {
			m.err = err
		}
	}
	m.mode = theme.Resolve(p.Theme)
	m.panel = viewer.New(history.ParseRange(p.Range))
	m.panel.SetSeries(hub.Query(m.panel.Range()))

	if u, err := hub.Latest(); err == nil {
		m.latest, m.hasLatest = u, true
	}
	return m
}

// NewProgram creates the program and subscribes it to the hub. Start feeds
// after this so no event is missed.
func NewProgram(hub *dashboard.Hub, prefs *store.PrefStore) *tea.Program {
	p := tea.NewProgram(New(hub, prefs), tea.WithAltScreen())
	hub.Subscribe(Sink(p))
	return p
}

// Mode is the active colour scheme.
func (m Model) Mode() theme.Mode { return m.mode }

// ── Commands ─────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func flashCmd(seq int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashDoneMsg{seq: seq}
	})
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Theme):
			m.mode = m.mode.Toggle()
			m.savePrefs(func(p *store.Prefs) { p.Theme = m.mode.String() })
			m.themeFlash = true
			return m, tea.Tick(flashDuration, func(time.Time) tea.Msg { return themeFlashDoneMsg{} })
		case key.Matches(msg, keys.Hour):
			m.selectRange(history.RangeHour)
		case key.Matches(msg, keys.Day):
			m.selectRange(history.RangeDay)
		case key.Matches(msg, keys.Week):
			m.selectRange(history.RangeWeek)
		case key.Matches(msg, keys.Left):
			m.panel.Scrub(-1)
		case key.Matches(msg, keys.Right):
			m.panel.Scrub(1)
		case key.Matches(msg, keys.Home):
			m.panel.Home()
		case key.Matches(msg, keys.End):
			m.panel.End()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case updateMsg:
		m.latest, m.hasLatest = feed.Update(msg), true
		m.panel.SetSeries(m.hub.Query(m.panel.Range()))
		m.flashSeq++
		m.flashing = true
		return m, flashCmd(m.flashSeq)

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashing = false
		}

	case themeFlashDoneMsg:
		m.themeFlash = false

	case statusMsg:
		m.status = dashboard.Status(msg)

	case tickMsg:
		m.panel.SetSeries(m.hub.Query(m.panel.Range()))
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) selectRange(r history.Range) {
	m.panel.SetRange(r)
	m.panel.SetSeries(m.hub.Query(r))
	m.savePrefs(func(p *store.Prefs) { p.Range = string(r) })
}

func (m *Model) savePrefs(fn func(*store.Prefs)) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.Update(fn); err != nil {
		m.err = fmt.Errorf("save preferences: %w", err)
	}
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}
	pal := theme.For(m.mode)

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth, pal))

	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(pal.Disconnected).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err)))
	}

	sections = append(sections, m.renderCurrent(contentWidth, pal))
	sections = append(sections, m.panel.View(contentWidth, pal))
	sections = append(sections, lipgloss.NewStyle().
		Background(pal.FooterBg).
		Width(contentWidth).
		Padding(0, 1).
		Render(m.help.View(keys)))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTitleBar(width int, pal theme.Palette) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(pal.TitleFg).
		Render("CLIMADASH")

	dotColor := pal.Disconnected
	switch m.status.State {
	case dashboard.StateConnected, dashboard.StateDemo:
		dotColor = pal.Connected
	case dashboard.StateConnecting:
		dotColor = pal.Dim
	}
	dim := lipgloss.NewStyle().Foreground(pal.Dim)

	parts := []string{
		lipgloss.NewStyle().Foreground(dotColor).Render("●") + " " +
			lipgloss.NewStyle().Foreground(pal.TitleFg).Render(m.status.Text),
		dim.Render("up " + fmtDuration(time.Since(m.startTime))),
	}

	modeStyle := dim
	if m.themeFlash {
		modeStyle = lipgloss.NewStyle().Foreground(pal.Highlight).Bold(true)
	}
	parts = append(parts, modeStyle.Render(m.mode.String()))

	right := strings.Join(parts, dim.Render(" │ "))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(pal.TitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderCurrent(width int, pal theme.Palette) string {
	dim := lipgloss.NewStyle().Foreground(pal.Dim)

	if !m.hasLatest {
		return lipgloss.NewStyle().
			Foreground(pal.Dim).
			Width(width).
			Align(lipgloss.Center).
			Padding(1, 0).
			Render("Waiting for sensor data...")
	}

	cardWidth := (width - 2) / 2
	card := func(metric trend.Metric, v float64, t trend.Trend, has bool) string {
		title := dim.Render(strings.ToUpper(metricTitle(metric)))
		badge := dim.Render("⟷ No change")
		if has {
			badge = chart.Badge(t, pal)
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			title,
			chart.Value(v, metric, pal, m.flashing),
			badge,
		)
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pal.Border).
			Padding(0, 1).
			Width(cardWidth).
			Render(body)
	}

	u := m.latest
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card(trend.Temperature, u.Sample.Temperature, u.Temperature, u.HasTrend),
		card(trend.Humidity, u.Sample.Humidity, u.Humidity, u.HasTrend),
	)
	updated := dim.Render("Last updated: ") +
		lipgloss.NewStyle().Foreground(pal.Text).Render(u.Sample.Time.Local().Format("15:04:05"))

	return lipgloss.JoinVertical(lipgloss.Left, cards, " "+updated)
}

func metricTitle(m trend.Metric) string {
	if m == trend.Humidity {
		return "Humidity"
	}
	return "Temperature"
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mi := d / time.Minute
	d -= mi * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mi, s)
	}
	return fmt.Sprintf("%dm%02ds", mi, s)
}
