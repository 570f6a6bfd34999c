// Package chart renders metric series as sparklines with timeline labels,
// current values and trend badges.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/climadash/internal/history"
	"github.com/luki/climadash/internal/theme"
	"github.com/luki/climadash/internal/trend"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Scale returns the vertical range used to plot metric m. Humidity is
// always 0..100; temperature pads the observed range.
func Scale(m trend.Metric, st history.Stats) (lo, hi float64) {
	if m == trend.Humidity {
		return 0, 100
	}
	lo = math.Floor(st.Min) - 2
	hi = math.Ceil(st.Max) + 2
	return lo, hi
}

// Resample shrinks points to at most width columns by averaging equal-sized
// buckets. Each bucket keeps the time of its newest point.
func Resample(points []history.Point, width int) []history.Point {
	if width <= 0 || len(points) <= width {
		return points
	}
	out := make([]history.Point, width)
	n := len(points)
	for i := 0; i < width; i++ {
		start := i * n / width
		end := (i + 1) * n / width
		sum := 0.0
		for _, p := range points[start:end] {
			sum += p.Value
		}
		out[i] = history.Point{
			Value: sum / float64(end-start),
			Time:  points[end-1].Time,
		}
	}
	return out
}

// Sparkline renders the last width points in color, scaled into lo..hi.
// Short series are padded on the left.
func Sparkline(points []history.Point, width int, lo, hi float64, color lipgloss.Color, pal theme.Palette) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(pal.Grid)
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := hi - lo
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	sb.WriteString(dim.Render(strings.Repeat("╌", width-len(points))))

	style := lipgloss.NewStyle().Foreground(color)
	for _, p := range points {
		sb.WriteString(style.Render(string(block(p.Value, lo, span))))
	}
	return sb.String()
}

func block(v, lo, span float64) rune {
	norm := (v - lo) / span
	norm = math.Max(0, math.Min(1, norm))
	idx := int(norm * 7)
	if idx > 7 {
		idx = 7
	}
	return sparkBlocks[idx]
}

// Timeline renders labels under a sparkline of the same points and width,
// one at each crossing of a unit boundary, skipping labels that would
// collide.
func Timeline(points []history.Point, width int, unit time.Duration, pal theme.Palette) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	lastEnd := -1
	for i, p := range points {
		if i == 0 || !crossed(points[i-1].Time, p.Time, unit) {
			continue
		}
		label := TickLabel(p.Time, unit)
		start := padLen + i - 2
		if start < 0 {
			start = 0
		}
		end := start + len([]rune(label))
		if end > width || start <= lastEnd+1 {
			continue
		}
		for j, ch := range []rune(label) {
			line[start+j] = ch
		}
		lastEnd = end
	}

	return lipgloss.NewStyle().Foreground(pal.Dim).Render(string(line))
}

// crossed reports whether a unit boundary lies in (prev, cur]. Day
// boundaries follow the local calendar.
func crossed(prev, cur time.Time, unit time.Duration) bool {
	if unit >= 24*time.Hour {
		return prev.YearDay() != cur.YearDay() || prev.Year() != cur.Year()
	}
	return prev.Truncate(unit) != cur.Truncate(unit)
}

// TickLabel formats t for a timeline at the given unit.
func TickLabel(t time.Time, unit time.Duration) string {
	switch {
	case unit >= 24*time.Hour:
		return t.Format("Jan 02")
	case unit >= time.Hour:
		return t.Format("15:00")
	default:
		return t.Format("15:04")
	}
}

// FormatValue renders v at the precision of m, with its unit.
func FormatValue(v float64, m trend.Metric) string {
	return fmt.Sprintf("%.*f%s", int(m.Places()), v, m.Unit())
}

// Value renders a current reading. highlight is the brief emphasis shown
// right after an update.
func Value(v float64, m trend.Metric, pal theme.Palette, highlight bool) string {
	color := pal.Temperature
	if m == trend.Humidity {
		color = pal.Humidity
	}
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	if highlight {
		style = style.Foreground(pal.Highlight)
	}
	return style.Render(FormatValue(v, m))
}

// Badge renders a trend arrow with its label, coloured by direction.
func Badge(t trend.Trend, pal theme.Palette) string {
	color := pal.Neutral
	switch t.Direction {
	case trend.Up:
		color = pal.Up
	case trend.Down:
		color = pal.Down
	}
	return lipgloss.NewStyle().Foreground(color).Render(t.Direction.Arrow() + " " + t.Label())
}

// Legend renders min/avg/max for one metric.
func Legend(st history.Stats, m trend.Metric, pal theme.Palette) string {
	dim := lipgloss.NewStyle().Foreground(pal.Dim)
	val := lipgloss.NewStyle().Foreground(pal.Text)
	return dim.Render(" lo ") + val.Render(FormatValue(st.Min, m)) +
		dim.Render(" avg ") + val.Render(FormatValue(st.Avg, m)) +
		dim.Render(" pk ") + val.Render(FormatValue(st.Max, m))
}
