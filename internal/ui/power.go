package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/format"
	"github.com/google/hoststat/internal/metrics"
)

// PowerModel renders battery and hardware sensor readings.
type PowerModel struct {
	width  int
	height int
	snap   metrics.Snapshot
}

func NewPowerModel() PowerModel {
	return PowerModel{}
}

func (m PowerModel) Update(msg tea.Msg) (PowerModel, tea.Cmd) {
	return m, nil
}

func (m *PowerModel) SetSnapshot(s metrics.Snapshot) {
	m.snap = s
}

func (m *PowerModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m PowerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := sized(PanelStyle, m.width, m.height)
	vis := m.snap.Visibility
	inner := m.width - 4

	var sections []string
	if vis.Battery {
		sections = append(sections, renderBattery(m.snap.Battery, inner))
	}
	if vis.Sensors {
		sections = append(sections, renderSensors(m.snap.Sensors, inner))
	}
	if len(sections) == 0 {
		content := lipgloss.Place(max(m.width-4, 0), max(m.height-2, 0), lipgloss.Center, lipgloss.Center, "Battery and sensors hidden\n(press 5 or 6)")
		return style.Render(content)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func row(label, value string) string {
	return MetricLabelStyle.Render(fmt.Sprintf("%-10s", label)) + MetricValueStyle.Render(value)
}

func renderBattery(b metrics.BatteryState, width int) string {
	title := TitleStyle.Render("Battery")
	if !b.IsPresent {
		return lipgloss.JoinVertical(lipgloss.Left, title, MetricLabelStyle.Render("No battery"), "")
	}

	label := fmt.Sprintf("%d%%", b.CurrentCapacityPercent)
	if b.IsCharging {
		label += " ⚡"
	}
	charge := renderGauge(float64(b.CurrentCapacityPercent), 100, width, label, func(ratio float64) bool {
		return !b.IsCharging && ratio <= 0.1
	})

	remaining := "Until empty"
	if b.IsCharging {
		remaining = "Until full"
	}

	health := "N/A"
	if b.Health > 0 {
		health = format.Percent(b.Health, 0)
	}
	cycles := "N/A"
	if b.CycleCount > 0 {
		cycles = fmt.Sprintf("%d", b.CycleCount)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		charge,
		row("Source", b.PowerSource),
		row(remaining, format.Minutes(b.TimeRemainingMinutes)),
		row("Health", health),
		row("Cycles", cycles),
		"",
	)
}

func renderSensors(s metrics.SensorState, width int) string {
	title := TitleStyle.Render("Sensors")
	if !s.Available {
		return lipgloss.JoinVertical(lipgloss.Left, title, MetricLabelStyle.Render("Sensors unavailable"))
	}

	lines := []string{
		title,
		tempBar("CPU", s.CPUTemperatureC, width),
		tempBar("GPU", s.GPUTemperatureC, width),
		tempBar("Battery", s.BatteryTemperature, width),
		tempBar("SSD", s.SSDTemperature, width),
	}

	if len(s.Fans) == 0 {
		lines = append(lines, MetricLabelStyle.Render("No fans reporting"))
	}
	for _, f := range s.Fans {
		label := fmt.Sprintf("%-7s %s", f.Name, format.RPM(f.RPM))
		if f.MaxRPM > 0 {
			lines = append(lines, renderBar(float64(f.RPM-f.MinRPM), float64(f.MaxRPM-f.MinRPM), width, label))
		} else {
			lines = append(lines, MetricValueStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// tempBar scales against 100°C; 0 renders as N/A without a bar.
func tempBar(name string, c float64, width int) string {
	label := fmt.Sprintf("%-7s %s", name, format.Temperature(c))
	if c <= 0 {
		return MetricLabelStyle.Render(label)
	}
	return renderBar(c, 100, width, label)
}
