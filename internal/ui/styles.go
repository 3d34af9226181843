package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors based on "Wrath of the Lich King" palette
const (
	ColorMidnightBlack = "#0A001F" // Background
	ColorIceBlue       = "#81A1C1" // Primary UI/Text
	ColorSteelGray     = "#4C566A" // Panels/Borders
	ColorPaleBlue      = "#8FBCBB" // Graphs/Normal Metrics
	ColorBloodCrimson  = "#C41E3A" // Alerts/Errors
)

// Palette is one set of theme colors.
type Palette struct {
	Background, Text, Border, Graph, Alert string
}

// Themes are selectable by name from the profile.
var Themes = map[string]Palette{
	"lich-king": {ColorMidnightBlack, ColorIceBlue, ColorSteelGray, ColorPaleBlue, ColorBloodCrimson},
	"mono":      {"#000000", "#D0D0D0", "#606060", "#FFFFFF", "#FF5555"},
}

var (
	// Base styles
	BaseStyle lipgloss.Style

	// Panel styles
	PanelStyle      lipgloss.Style
	AlertPanelStyle lipgloss.Style

	// Text styles
	TitleStyle       lipgloss.Style
	TextStyle        lipgloss.Style
	MetricLabelStyle lipgloss.Style
	MetricValueStyle lipgloss.Style

	// Alert styles
	AlertStyle lipgloss.Style

	// Bar styles
	BarStyle      lipgloss.Style
	AlertBarStyle lipgloss.Style

	palette Palette
)

// sized fits base into a w by h cell, border included.
func sized(base lipgloss.Style, w, h int) lipgloss.Style {
	return base.Width(max(w-2, 0)).Height(max(h-2, 0))
}

func init() {
	ApplyTheme("lich-king")
}

// ApplyTheme rebuilds the shared styles from the named palette. Unknown
// names fall back to the default theme and report false.
func ApplyTheme(name string) bool {
	p, ok := Themes[name]
	if !ok {
		p = Themes["lich-king"]
	}
	palette = p

	BaseStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(p.Background)).
		Foreground(lipgloss.Color(p.Text))

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Border)).
		Padding(0, 1)

	AlertPanelStyle = PanelStyle.
		BorderForeground(lipgloss.Color(p.Alert))

	TitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Text)).
		Bold(true)

	TextStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Text))

	MetricLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Border))

	MetricValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Graph))

	AlertStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Alert)).
		Bold(true)

	BarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Graph))

	AlertBarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Alert))

	return ok
}
