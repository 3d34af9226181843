package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/format"
)

type FooterModel struct {
	width    int
	status   string
	uptime   uint64
	interval time.Duration
	captured time.Time
}

func NewFooterModel() FooterModel {
	return FooterModel{}
}

func (m *FooterModel) SetSize(w int) {
	m.width = w
}

// SetStatus shows a transient message in place of the hotkeys.
func (m *FooterModel) SetStatus(s string) {
	m.status = s
}

func (m *FooterModel) SetCycle(uptime uint64, interval time.Duration, captured time.Time) {
	m.uptime = uptime
	m.interval = interval
	m.captured = captured
}

func (m FooterModel) View() string {
	if m.width == 0 {
		return ""
	}

	style := lipgloss.NewStyle().
		Width(m.width).
		Background(lipgloss.Color(palette.Border)).
		Foreground(lipgloss.Color(palette.Background)).
		Padding(0, 1)

	left := fmt.Sprintf("hoststat | up %s | every %v", format.Uptime(m.uptime), m.interval)
	if !m.captured.IsZero() {
		left += " | " + m.captured.Format("15:04:05")
	}

	right := "q: Quit | +/-: Rate | 1-6: Panels | [ ] { }: Resize | /: Filter"
	if m.status != "" {
		right = m.status
	}

	spacerWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return style.Render(left + spacer + right)
}
