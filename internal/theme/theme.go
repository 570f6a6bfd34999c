// Package theme holds the light and dark colour palettes and the rules for
// picking one.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode is a colour scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// hasDarkBackground is swapped out in tests.
var hasDarkBackground = lipgloss.HasDarkBackground

// Parse returns the mode named by s, ignoring case, and whether s named
// one.
func Parse(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return Light, false
}

// Resolve picks the stored preference when there is one, otherwise the
// terminal background decides.
func Resolve(stored string) Mode {
	if m, ok := Parse(stored); ok {
		return m
	}
	if hasDarkBackground() {
		return Dark
	}
	return Light
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string { return string(m) }

// Palette is the set of colours a view needs.
type Palette struct {
	Mode Mode

	Temperature lipgloss.Color
	Humidity    lipgloss.Color

	Text     lipgloss.Color
	Grid     lipgloss.Color
	Dim      lipgloss.Color
	Border   lipgloss.Color
	TitleBg  lipgloss.Color
	TitleFg  lipgloss.Color
	FooterBg lipgloss.Color

	TooltipBg     lipgloss.Color
	TooltipTitle  lipgloss.Color
	TooltipBody   lipgloss.Color
	TooltipBorder lipgloss.Color

	Up      lipgloss.Color
	Down    lipgloss.Color
	Neutral lipgloss.Color

	Connected    lipgloss.Color
	Disconnected lipgloss.Color
	Highlight    lipgloss.Color
}

var light = Palette{
	Mode:          Light,
	Temperature:   "#3B82F6",
	Humidity:      "#14B8A6",
	Text:          "#4B5563",
	Grid:          "#D1D5DB",
	Dim:           "#9CA3AF",
	Border:        "#E5E7EB",
	TitleBg:       "#F3F4F6",
	TitleFg:       "#1F2937",
	FooterBg:      "#F3F4F6",
	TooltipBg:     "#FFFFFF",
	TooltipTitle:  "#1F2937",
	TooltipBody:   "#4B5563",
	TooltipBorder: "#E5E7EB",
	Up:            "#EF4444",
	Down:          "#3B82F6",
	Neutral:       "#6B7280",
	Connected:     "#10B981",
	Disconnected:  "#EF4444",
	Highlight:     "#F59E0B",
}

var dark = Palette{
	Mode:          Dark,
	Temperature:   "#3B82F6",
	Humidity:      "#14B8A6",
	Text:          "#D1D5DB",
	Grid:          "#374151",
	Dim:           "#6B7280",
	Border:        "#374151",
	TitleBg:       "#111827",
	TitleFg:       "#F9FAFB",
	FooterBg:      "#1F2937",
	TooltipBg:     "#1F2937",
	TooltipTitle:  "#F9FAFB",
	TooltipBody:   "#D1D5DB",
	TooltipBorder: "#374151",
	Up:            "#F87171",
	Down:          "#60A5FA",
	Neutral:       "#9CA3AF",
	Connected:     "#34D399",
	Disconnected:  "#F87171",
	Highlight:     "#FBBF24",
}

// For returns the palette of mode m.
func For(m Mode) Palette {
	if m == Dark {
		return dark
	}
	return light
}
