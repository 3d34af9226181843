package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/format"
	"github.com/google/hoststat/internal/metrics"
)

type SortBy int

const (
	SortUsage SortBy = iota
	SortFree
	SortName
)

func (s SortBy) String() string {
	switch s {
	case SortFree:
		return "FREE"
	case SortName:
		return "NAME"
	}
	return "USE"
}

// DiskModel lists mounted volumes and disk throughput.
type DiskModel struct {
	table     table.Model
	width     int
	height    int
	state     metrics.DiskState
	visible   bool
	sortBy    SortBy
	filter    string
	filtering bool
	textInput textinput.Model
	Alert     bool
}

func NewDiskModel() DiskModel {
	columns := []table.Column{
		{Title: "Volume", Width: 16},
		{Title: "Size", Width: 9},
		{Title: "Free", Width: 9},
		{Title: "Use%", Width: 6},
		{Title: "Mount", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(5),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color(palette.Border)).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(palette.Background)).
		Background(lipgloss.Color(palette.Text)).
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/"
	ti.CharLimit = 30
	ti.Width = 20

	return DiskModel{
		table:     t,
		visible:   true,
		sortBy:    SortUsage,
		textInput: ti,
	}
}

// Filtering reports whether the filter prompt owns the keyboard.
func (m DiskModel) Filtering() bool {
	return m.filtering
}

func (m DiskModel) Update(msg tea.Msg) (DiskModel, tea.Cmd) {
	var cmd tea.Cmd

	if m.filtering {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter = m.textInput.Value()
				m.table.Focus()
				return m, nil
			}
		}
		m.textInput, cmd = m.textInput.Update(msg)
		m.filter = m.textInput.Value() // Live filter
		m.refreshRows()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "/":
			m.filtering = true
			m.textInput.Focus()
			m.table.Blur()
			return m, textinput.Blink
		case "s":
			m.sortBy = (m.sortBy + 1) % 3
			m.refreshRows()
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DiskModel) SetSnapshot(s metrics.Snapshot) {
	m.state = s.Disk
	m.visible = s.Visibility.Disk
	m.Alert = false
	for _, v := range s.Disk.Volumes {
		if v.UsagePercent > 90 {
			m.Alert = true
		}
	}
	m.refreshRows()
}

func (m *DiskModel) refreshRows() {
	vols := m.state.Volumes

	var filtered []metrics.DiskInfo
	if m.filter != "" {
		lowerFilter := strings.ToLower(m.filter)
		for _, v := range vols {
			if strings.Contains(strings.ToLower(v.Name), lowerFilter) ||
				strings.Contains(strings.ToLower(v.MountPoint), lowerFilter) {
				filtered = append(filtered, v)
			}
		}
	} else {
		filtered = make([]metrics.DiskInfo, len(vols))
		copy(filtered, vols)
	}

	switch m.sortBy {
	case SortUsage:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].UsagePercent > filtered[j].UsagePercent
		})
	case SortFree:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].FreeBytes > filtered[j].FreeBytes
		})
	case SortName:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Name < filtered[j].Name
		})
	}

	rows := make([]table.Row, len(filtered))
	for i, v := range filtered {
		rows[i] = table.Row{
			v.Name,
			format.Bytes(v.TotalBytes, format.File),
			format.Bytes(v.FreeBytes, format.File),
			fmt.Sprintf("%.1f", v.UsagePercent),
			v.MountPoint,
		}
	}
	m.table.SetRows(rows)
}

func (m *DiskModel) SetSize(w, h int) {
	m.width = w
	m.height = h

	// Title, table header and the throughput row take 5 lines.
	tableHeight := h - 5
	if tableHeight < 1 {
		tableHeight = 1
	}
	m.table.SetHeight(tableHeight)

	cols := m.table.Columns()
	cols[1].Width = 9 // Size
	cols[2].Width = 9 // Free
	cols[3].Width = 6 // Use%

	remaining := w - (9 + 9 + 6 + 14) // + padding
	if remaining < 20 {
		remaining = 20
	}
	cols[0].Width = remaining / 2
	cols[4].Width = remaining - remaining/2
	m.table.SetColumns(cols)
}

func (m DiskModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	style := PanelStyle
	if m.Alert {
		style = AlertPanelStyle
	}
	style = sized(style, m.width, m.height)

	if !m.visible {
		return style.Render(MetricLabelStyle.Render("Disk hidden (press 4)"))
	}

	title := "Volumes"
	if m.filtering {
		title = m.textInput.View()
	} else if m.filter != "" {
		title = fmt.Sprintf("Filter: %s", m.filter)
	}

	sortStr := m.sortBy.String()
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		TitleStyle.Render(title),
		lipgloss.PlaceHorizontal(max(m.width-lipgloss.Width(title)-lipgloss.Width(sortStr)-6, 1), lipgloss.Right, " "),
		MetricLabelStyle.Render(fmt.Sprintf("[%s]", sortStr)),
	)

	io := MetricLabelStyle.Render(fmt.Sprintf("Read %s  Write %s",
		format.Speed(m.state.ReadSpeed), format.Speed(m.state.WriteSpeed)))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.table.View(),
		io,
	))
}
