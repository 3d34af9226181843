package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/hoststat/internal/config"
	"github.com/google/hoststat/internal/engine"
	"github.com/google/hoststat/internal/metrics"
	"github.com/labstack/gommon/log"
)

// SnapshotMsg delivers one published snapshot to the program.
type SnapshotMsg metrics.Snapshot

// Controller is the part of the engine the interface drives.
type Controller interface {
	RefreshInterval() time.Duration
	SetRefreshInterval(time.Duration) error
	Visibility() metrics.Visibility
	SetVisibility(metrics.Visibility)
}

// statusTimeout is how long a status message replaces the hotkey hints.
const statusTimeout = 3 * time.Second

type clearStatusMsg struct{ seq int }

type RootModel struct {
	engine Controller
	config *config.ProfileConfiguration
	snap   metrics.Snapshot

	// Sub-models
	cpu     CPUModel
	network NetworkModel
	disk    DiskModel
	power   PowerModel
	footer  FooterModel

	// Layout state
	width, height int
	col1Pct       float64 // Percentage of width for Left Column (CPU and memory)
	col2Pct       float64 // Percentage of width for Middle Column (network and disk)
	// Right column takes remaining

	// Tooltip state
	mouseX, mouseY       int
	showTooltip          bool
	currentTooltipRegion string

	statusSeq int
}

func NewRootModel(ctrl Controller, cfg *config.ProfileConfiguration) RootModel {
	// Use configuration values or defaults
	col1Pct := 0.40
	col2Pct := 0.30

	if cfg != nil {
		if val, ok := cfg.ColumnWidths["system"]; ok {
			col1Pct = val
		}
		if val, ok := cfg.ColumnWidths["network"]; ok {
			col2Pct = val
		}
		if !ApplyTheme(cfg.Theme) {
			log.Warnf("ui: unknown theme %q, using default", cfg.Theme)
		}
	}

	m := RootModel{
		engine:  ctrl,
		config:  cfg,
		cpu:     NewCPUModel(),
		network: NewNetworkModel(),
		disk:    NewDiskModel(),
		power:   NewPowerModel(),
		footer:  NewFooterModel(),
		col1Pct: col1Pct,
		col2Pct: col2Pct,
	}
	m.snap.Visibility = ctrl.Visibility()
	m.distribute()
	return m
}

// Config returns the profile updated with the interval, panel visibility
// and column widths chosen during the session.
func (m RootModel) Config() *config.ProfileConfiguration {
	cfg := m.config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.SetInterval(m.engine.RefreshInterval())
	cfg.SetVisibility(m.engine.Visibility())
	cfg.ColumnWidths = map[string]float64{
		"system":  m.col1Pct,
		"network": m.col2Pct,
		"power":   1 - m.col1Pct - m.col2Pct,
	}
	return cfg
}

func (m RootModel) Init() tea.Cmd {
	return nil
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The filter prompt owns the keyboard until it is dismissed.
		if m.disk.Filtering() {
			m.disk, cmd = m.disk.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "+", "=":
			cmds = append(cmds, m.stepInterval(-1))
		case "-", "_":
			cmds = append(cmds, m.stepInterval(1))
		case "1", "2", "3", "4", "5", "6":
			m.toggle(int(msg.String()[0] - '1'))
		case "[": // Shrink Left Col
			m.col1Pct -= 0.05
			if m.col1Pct < 0.1 {
				m.col1Pct = 0.1
			}
			m.resizeModules()
		case "]": // Expand Left Col
			m.col1Pct += 0.05
			if m.col1Pct+m.col2Pct > 0.9 {
				m.col1Pct = 0.9 - m.col2Pct
			}
			m.resizeModules()
		case "{": // Shrink Middle Col (effectively expands Right)
			m.col2Pct -= 0.05
			if m.col2Pct < 0.1 {
				m.col2Pct = 0.1
			}
			m.resizeModules()
		case "}": // Expand Middle Col
			m.col2Pct += 0.05
			if m.col1Pct+m.col2Pct > 0.9 {
				m.col2Pct = 0.9 - m.col1Pct
			}
			m.resizeModules()
		default:
			// Table navigation, sorting and filtering
			m.disk, cmd = m.disk.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeModules()

	case SnapshotMsg:
		m.snap = metrics.Snapshot(msg)
		m.distribute()

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.footer.SetStatus("")
		}

	case tea.MouseMsg:
		m.mouseX = msg.X
		m.mouseY = msg.Y

		// Tooltip handling based on mouse position
		if m.config != nil && m.config.ShowTooltips {
			region := m.determineMouseRegion()
			m.showTooltip = (region != "")
			if m.showTooltip {
				m.currentTooltipRegion = region
			}
		} else {
			m.showTooltip = false
			m.currentTooltipRegion = ""
		}

		m.disk, cmd = m.disk.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// distribute hands the current snapshot to every panel.
func (m *RootModel) distribute() {
	m.cpu.SetSnapshot(m.snap)
	m.network.SetSnapshot(m.snap)
	m.disk.SetSnapshot(m.snap)
	m.power.SetSnapshot(m.snap)
	m.footer.SetCycle(m.snap.Uptime, m.engine.RefreshInterval(), m.snap.Timestamp)
}

// stepInterval moves to the neighbouring refresh preset; dir < 0 is faster.
func (m *RootModel) stepInterval(dir int) tea.Cmd {
	next := nextPreset(m.engine.RefreshInterval(), dir)
	if err := m.engine.SetRefreshInterval(next); err != nil {
		log.Errorf("ui: %v", err)
		return m.setStatus(err.Error())
	}
	m.footer.SetCycle(m.snap.Uptime, next, m.snap.Timestamp)
	return m.setStatus(fmt.Sprintf("Refresh every %v", next))
}

func nextPreset(cur time.Duration, dir int) time.Duration {
	presets := engine.RefreshPresets
	if dir < 0 {
		for i := len(presets) - 1; i >= 0; i-- {
			if presets[i] < cur {
				return presets[i]
			}
		}
		return presets[0]
	}
	for _, p := range presets {
		if p > cur {
			return p
		}
	}
	return presets[len(presets)-1]
}

// toggle flips the visibility of the i-th module in config.Modules order.
func (m *RootModel) toggle(i int) {
	v := m.engine.Visibility()
	flags := []*bool{&v.CPU, &v.Memory, &v.Network, &v.Disk, &v.Battery, &v.Sensors}
	*flags[i] = !*flags[i]
	m.engine.SetVisibility(v)

	// Apply now rather than on the next cycle.
	m.snap.Visibility = v
	m.distribute()
}

func (m *RootModel) setStatus(s string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.footer.SetStatus(s)
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq} })
}

func (m *RootModel) resizeModules() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// Calculate widths
	w1 := int(float64(m.width) * m.col1Pct)
	w2 := int(float64(m.width) * m.col2Pct)
	w3 := m.width - w1 - w2

	// Height available for columns (minus footer)
	h := m.height - 1
	if h < 1 {
		h = 1
	}
	netH := h / 2

	m.cpu.SetSize(w1, h)
	m.network.SetSize(w2, netH)
	m.disk.SetSize(w2, h-netH)
	m.power.SetSize(w3, h)
	m.footer.SetSize(m.width)
}

func (m RootModel) determineMouseRegion() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	w1 := int(float64(m.width) * m.col1Pct)
	w2 := int(float64(m.width) * m.col2Pct)

	// Footer is at bottom row (height - 1)
	footerRow := m.height - 1
	netH := footerRow / 2

	switch {
	case m.mouseY == footerRow:
		return "footer"
	case m.mouseY > footerRow || m.mouseX < 0:
		return ""
	case m.mouseX < w1:
		return "system"
	case m.mouseX < w1+w2 && m.mouseY < netH:
		return "network"
	case m.mouseX < w1+w2:
		return "disk"
	case m.mouseX < m.width:
		return "power"
	}
	return ""
}

func (m RootModel) getTooltipContent(region string) string {
	switch region {
	case "system":
		return "CPU share of user, system and nice time since the last sample, and memory by page class. Press 1 or 2 to hide."
	case "network":
		return "Combined throughput of the monitored interfaces, with one minute of history. Press 3 to hide."
	case "disk":
		return "Mounted volumes. Arrows select, s cycles the sort, / filters. Press 4 to hide."
	case "power":
		return "Battery charge and health, temperatures and fan speeds. N/A means the sensor did not answer. Press 5 or 6 to hide."
	case "footer":
		return "Uptime and refresh rate. + and - change the rate, [ ] and { } resize the columns."
	default:
		return ""
	}
}

func (m RootModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	middle := lipgloss.JoinVertical(lipgloss.Left,
		m.network.View(),
		m.disk.View(),
	)
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		m.cpu.View(),
		middle,
		m.power.View(),
	)

	mainView := lipgloss.JoinVertical(lipgloss.Left,
		cols,
		m.footer.View(),
	)

	if m.showTooltip && m.currentTooltipRegion != "" {
		tooltipContent := m.getTooltipContent(m.currentTooltipRegion)
		if tooltipContent != "" {
			tooltipStyle := lipgloss.NewStyle().
				Background(lipgloss.Color(palette.Border)).
				Foreground(lipgloss.Color(palette.Background)).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(palette.Text))

			return mainView + "\n" + tooltipStyle.Render(tooltipContent)
		}
	}

	return mainView
}
