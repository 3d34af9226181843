package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/format"
	"github.com/google/hoststat/internal/metrics"
)

// CPUModel renders the CPU and memory column.
type CPUModel struct {
	width  int
	height int
	snap   metrics.Snapshot
}

func NewCPUModel() CPUModel {
	return CPUModel{}
}

func (m CPUModel) Init() tea.Cmd {
	return nil
}

func (m CPUModel) Update(msg tea.Msg) (CPUModel, tea.Cmd) {
	return m, nil
}

func (m *CPUModel) SetSnapshot(s metrics.Snapshot) {
	m.snap = s
}

func (m *CPUModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m CPUModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := sized(PanelStyle, m.width, m.height)
	vis := m.snap.Visibility
	inner := m.width - 4

	var sections []string
	if vis.CPU {
		sections = append(sections, m.renderCPU(inner))
	}
	if vis.Memory {
		sections = append(sections, m.renderMemory(inner))
	}
	if len(sections) == 0 {
		content := lipgloss.Place(max(m.width-4, 0), max(m.height-2, 0), lipgloss.Center, lipgloss.Center, "CPU and memory hidden\n(press 1 or 2)")
		return style.Render(content)
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m CPUModel) renderCPU(width int) string {
	c := m.snap.CPU
	titleStyle := TitleStyle
	if c.Usage > 90 {
		titleStyle = AlertStyle
	}
	header := titleStyle.Render(fmt.Sprintf("CPU: %s", format.Percent(c.Usage, 1)))
	breakdown := renderShares(width, []share{
		{"usr", c.UserUsage},
		{"sys", c.SystemUsage},
		{"nice", c.NiceUsage},
		{"idle", c.IdleUsage},
	})

	graphHeight := m.height/3 - 2
	if graphHeight < 2 {
		graphHeight = 2
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		breakdown,
		renderGraph(c.History, 100, width, graphHeight),
		"",
	)
}

func (m CPUModel) renderMemory(width int) string {
	mem := m.snap.Memory
	header := TitleStyle.Render("Memory")
	bar := renderBar(mem.UsagePercent, 100, width, fmt.Sprintf("%s / %s",
		format.Bytes(mem.Used, format.Memory), format.Bytes(mem.Total, format.Memory)))

	detail := func(label string, v uint64) string {
		return MetricLabelStyle.Render(fmt.Sprintf("%-11s", label)) + MetricValueStyle.Render(format.Bytes(v, format.Memory))
	}

	graphHeight := m.height/4 - 2
	if graphHeight < 2 {
		graphHeight = 2
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		bar,
		detail("Active", mem.Active),
		detail("Inactive", mem.Inactive),
		detail("Wired", mem.Wired),
		detail("Compressed", mem.Compressed),
		detail("Free", mem.Free),
		renderGraph(mem.History, 100, width, graphHeight),
	)
}

type share struct {
	label string
	value float64
}

// renderShares lays the CPU breakdown out two bars per line.
func renderShares(width int, shares []share) string {
	var sb strings.Builder
	colWidth := (width / 2) - 2
	if colWidth < 10 {
		colWidth = width // single column
	}

	for i := 0; i < len(shares); i += 2 {
		s1 := shares[i]
		bar1 := renderBarCompact(s1.value, 100, colWidth, fmt.Sprintf("%-4s %5.1f", s1.label, s1.value))

		if i+1 < len(shares) && colWidth != width {
			s2 := shares[i+1]
			bar2 := renderBarCompact(s2.value, 100, colWidth, fmt.Sprintf("%-4s %5.1f", s2.label, s2.value))

			// Pad to align
			padding := width - lipgloss.Width(bar1) - lipgloss.Width(bar2)
			if padding < 0 {
				padding = 0
			}
			sb.WriteString(bar1 + strings.Repeat(" ", padding) + bar2 + "\n")
		} else {
			sb.WriteString(bar1 + "\n")
			if i+1 < len(shares) {
				s2 := shares[i+1]
				sb.WriteString(renderBarCompact(s2.value, 100, colWidth, fmt.Sprintf("%-4s %5.1f", s2.label, s2.value)) + "\n")
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
