// Package viewer implements the history panel: range selection, a scrub
// cursor over the queried series and sparkline windows ending at it.
package viewer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/climadash/internal/chart"
	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/theme"
	"github.com/luki/climadash/internal/trend"
)

// Panel holds the selected range, its series and the cursor. The cursor
// follows the newest sample until the user scrubs away from it.
type Panel struct {
	rng    history.Range
	series history.Series
	cursor int
	follow bool
}

// New returns an empty panel showing r.
func New(r history.Range) Panel {
	return Panel{rng: history.ParseRange(string(r)), follow: true, cursor: -1}
}

// Range is the selected range.
func (p *Panel) Range() history.Range { return p.rng }

// SetRange selects r and pins the cursor to the newest sample. The caller
// loads the new series.
func (p *Panel) SetRange(r history.Range) {
	p.rng = history.ParseRange(string(r))
	p.follow = true
}

// Series is the series being shown.
func (p *Panel) Series() history.Series { return p.series }

// SetSeries replaces the series. A pinned cursor moves to the newest
// sample; otherwise it stays on the sample nearest its previous time.
func (p *Panel) SetSeries(s history.Series) {
	var at time.Time
	hadCursor := p.cursor >= 0 && p.cursor < p.series.Len()
	if hadCursor {
		at = p.series.Timestamps[p.cursor]
	}

	p.series = s
	switch {
	case s.Len() == 0:
		p.cursor = -1
	case p.follow || !hadCursor:
		p.cursor = s.Len() - 1
	default:
		p.cursor = NearestIndex(s.Timestamps, at)
	}
}

// Cursor returns the cursor index, or -1 when there is no data.
func (p *Panel) Cursor() int { return p.cursor }

// CursorTime returns the timestamp under the cursor.
func (p *Panel) CursorTime() (time.Time, bool) {
	if p.cursor < 0 || p.cursor >= p.series.Len() {
		return time.Time{}, false
	}
	return p.series.Timestamps[p.cursor], true
}

// Following reports whether the cursor tracks the newest sample.
func (p *Panel) Following() bool { return p.follow }

// Scrub moves the cursor by n samples, clamped to the series.
func (p *Panel) Scrub(n int) {
	if p.series.Len() == 0 {
		return
	}
	c := p.cursor + n
	if c < 0 {
		c = 0
	}
	if c > p.series.Len()-1 {
		c = p.series.Len() - 1
	}
	p.cursor = c
	p.follow = c == p.series.Len()-1
}

// Home moves the cursor to the oldest sample.
func (p *Panel) Home() { p.Scrub(-p.series.Len()) }

// End moves the cursor to the newest sample and pins it there.
func (p *Panel) End() { p.Scrub(p.series.Len()) }

// NearestIndex returns the index of the timestamp closest to t, or -1 for
// an empty slice. ts must be sorted.
func NearestIndex(ts []time.Time, t time.Time) int {
	if len(ts) == 0 {
		return -1
	}
	i := sort.Search(len(ts), func(i int) bool { return !ts[i].Before(t) })
	switch {
	case i == 0:
		return 0
	case i == len(ts):
		return len(ts) - 1
	}
	if absDuration(ts[i].Sub(t)) < absDuration(t.Sub(ts[i-1])) {
		return i
	}
	return i - 1
}

// Plot returns what the panel draws for pts at the given width: the whole
// range averaged down to width columns while the cursor follows the newest
// sample, otherwise the raw points ending at the cursor.
func (p *Panel) Plot(pts []history.Point, width int) []history.Point {
	if p.follow {
		return chart.Resample(pts, width)
	}
	return Window(pts, p.cursor, width)
}

// Window returns up to width points ending at index cursor.
func Window(points []history.Point, cursor, width int) []history.Point {
	if len(points) == 0 || width <= 0 || cursor < 0 {
		return nil
	}
	if cursor >= len(points) {
		cursor = len(points) - 1
	}
	start := cursor - width + 1
	if start < 0 {
		start = 0
	}
	return points[start : cursor+1]
}

// scrubTick is the spacing of the marks on the scrubber bar.
func scrubTick(r history.Range) time.Duration {
	switch r {
	case history.RangeWeek:
		return 24 * time.Hour
	case history.RangeDay:
		return 6 * time.Hour
	default:
		return 15 * time.Minute
	}
}

// Scrubber renders a bar of width cells with the cursor position marked.
func (p *Panel) Scrubber(width int, pal theme.Palette) string {
	n := p.series.Len()
	if n == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if n > 1 && width > 1 {
		pos = p.cursor * (width - 1) / (n - 1)
	}
	if pos >= width {
		pos = width - 1
	}

	dim := lipgloss.NewStyle().Foreground(pal.Grid)
	cur := lipgloss.NewStyle().Foreground(pal.Highlight).Bold(true)
	tick := lipgloss.NewStyle().Foreground(pal.Dim)
	unit := scrubTick(p.rng)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(cur.Render("◆"))
			continue
		}
		idx := 0
		if n > 1 && width > 1 {
			idx = i * (n - 1) / (width - 1)
		}
		if idx > 0 {
			t, prev := p.series.Timestamps[idx], p.series.Timestamps[idx-1]
			if t.Truncate(unit) != prev.Truncate(unit) {
				sb.WriteString(tick.Render("│"))
				continue
			}
		}
		sb.WriteString(dim.Render("─"))
	}
	return sb.String()
}

// View renders the panel at the given width.
func (p *Panel) View(width int, pal theme.Palette) string {
	if width < 40 {
		width = 40
	}
	dim := lipgloss.NewStyle().Foreground(pal.Dim)
	text := lipgloss.NewStyle().Foreground(pal.Text)

	title := lipgloss.NewStyle().Bold(true).Foreground(pal.TitleFg).Render("History")
	var tabs []string
	for _, r := range history.Ranges {
		style := dim
		if r == p.rng {
			style = lipgloss.NewStyle().Foreground(pal.Highlight).Bold(true)
		}
		tabs = append(tabs, style.Render(r.Label()))
	}
	rows := []string{title + "  " + strings.Join(tabs, dim.Render(" · "))}

	if p.series.Len() == 0 {
		rows = append(rows, dim.Render("No data for this range."))
		return p.frame(rows, width, pal)
	}

	at, _ := p.CursorTime()
	info := p.readout(at, pal) + dim.Render(fmt.Sprintf("  %d/%d  ", p.cursor+1, p.series.Len()))
	barWidth := width - lipgloss.Width(info) - 6
	if barWidth < 10 {
		barWidth = 10
	}
	rows = append(rows, info+p.Scrubber(barWidth, pal))

	labelW, valueW := 12, 8
	chartWidth := width - labelW - valueW - 48
	if chartWidth < 15 {
		chartWidth = 15
	}
	frameL := lipgloss.NewStyle().Foreground(pal.Border).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(pal.Border).Render("▏")

	var window []history.Point
	for _, m := range []trend.Metric{trend.Temperature, trend.Humidity} {
		pts := p.series.TemperaturePoints()
		st, _ := p.series.TemperatureStats()
		color := pal.Temperature
		if m == trend.Humidity {
			pts = p.series.HumidityPoints()
			st, _ = p.series.HumidityStats()
			color = pal.Humidity
		}
		window = p.Plot(pts, chartWidth)
		lo, hi := chart.Scale(m, st)

		label := text.Width(labelW).Render(metricLabel(m))
		value := lipgloss.NewStyle().Width(valueW).Align(lipgloss.Right).
			Render(chart.Value(pts[p.cursor].Value, m, pal, false))
		spark := frameL + chart.Sparkline(window, chartWidth, lo, hi, color, pal) + frameR

		rows = append(rows, label+" "+value+" "+spark+chart.Legend(st, m, pal))
	}

	if tl := chart.Timeline(window, chartWidth, p.rng.TickUnit(), pal); strings.TrimSpace(tl) != "" {
		rows = append(rows, strings.Repeat(" ", labelW+valueW+3)+tl)
	}

	return p.frame(rows, width, pal)
}

// readout is the tooltip-styled box for the sample under the cursor.
func (p *Panel) readout(at time.Time, pal theme.Palette) string {
	bg := lipgloss.NewStyle().Background(pal.TooltipBg)
	title := bg.Foreground(pal.TooltipTitle).Bold(true)
	body := bg.Foreground(pal.TooltipBody)
	sep := bg.Foreground(pal.TooltipBorder).Render(" │ ")
	return title.Render(" "+at.Format(cursorLayout(p.rng))) + sep +
		body.Render(chart.FormatValue(p.series.Temperature[p.cursor], trend.Temperature)+" ") +
		body.Render(chart.FormatValue(p.series.Humidity[p.cursor], trend.Humidity)+" ")
}

func (p *Panel) frame(rows []string, width int, pal theme.Palette) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.Border).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func metricLabel(m trend.Metric) string {
	if m == trend.Humidity {
		return "Humidity"
	}
	return "Temperature"
}

func cursorLayout(r history.Range) string {
	if r == history.RangeHour {
		return "15:04:05"
	}
	return "Mon 15:04"
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
