package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/format"
	"github.com/google/hoststat/internal/metrics"
)

// NetworkModel renders throughput and transfer history.
type NetworkModel struct {
	width   int
	height  int
	state   metrics.NetworkState
	visible bool
}

func NewNetworkModel() NetworkModel {
	return NetworkModel{visible: true}
}

func (m NetworkModel) Update(msg tea.Msg) (NetworkModel, tea.Cmd) {
	return m, nil
}

func (m *NetworkModel) SetSnapshot(s metrics.Snapshot) {
	m.state = s.Network
	m.visible = s.Visibility.Network
}

func (m *NetworkModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m NetworkModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := sized(PanelStyle, m.width, m.height)
	if !m.visible {
		return style.Render(MetricLabelStyle.Render("Network hidden (press 3)"))
	}

	inner := m.width - 4
	graphHeight := (m.height - 6) / 2
	if graphHeight < 1 {
		graphHeight = 1
	}

	// Both graphs share one scale so they compare at a glance.
	peak := max(maxOf(m.state.DownloadHistory), maxOf(m.state.UploadHistory))

	down := fmt.Sprintf("↓ %s", format.Speed(m.state.DownloadSpeed))
	up := fmt.Sprintf("↑ %s", format.Speed(m.state.UploadSpeed))
	totals := MetricLabelStyle.Render(fmt.Sprintf("Total ↓ %s  ↑ %s",
		format.Bytes(m.state.TotalDownloadBytes, format.File),
		format.Bytes(m.state.TotalUploadBytes, format.File)))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Network"),
		MetricValueStyle.Render(down),
		renderGraph(m.state.DownloadHistory, peak, inner, graphHeight),
		MetricValueStyle.Render(up),
		renderGraph(m.state.UploadHistory, peak, inner, graphHeight),
		totals,
	))
}

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
