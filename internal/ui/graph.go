package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderBar(value, max float64, width int, label string) string {
	return renderGauge(value, max, width, label, func(ratio float64) bool { return ratio > 0.8 })
}

// renderGauge is renderBar with a caller-chosen alert condition.
func renderGauge(value, max float64, width int, label string, alert func(ratio float64) bool) string {
	if max <= 0 {
		max = 100
	} // Avoid divide by zero
	if width < 10 {
		return label
	}
	barWidth := width - lipgloss.Width(label) - 1
	if barWidth < 0 {
		barWidth = 0
	}

	ratio := value / max
	if ratio > 1.0 {
		ratio = 1.0
	}
	if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(barWidth))
	empty := barWidth - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)

	style := BarStyle
	if alert(ratio) {
		style = AlertBarStyle
	}

	return fmt.Sprintf("%s %s", label, style.Render(bar))
}

func renderBarCompact(value, max float64, width int, label string) string {
	// [Label  |||||     ]
	labelLen := lipgloss.Width(label)
	barLen := width - labelLen - 3 // [ ] and space
	if barLen < 5 {
		return fmt.Sprintf("%s %.0f%%", label, value)
	}
	if max <= 0 {
		max = 100
	}

	filled := int(value / max * float64(barLen))
	if filled > barLen {
		filled = barLen
	}
	if filled < 0 {
		filled = 0
	}
	empty := barLen - filled

	bar := strings.Repeat("|", filled) + strings.Repeat(" ", empty)

	style := BarStyle
	if value/max > 0.8 {
		style = AlertBarStyle
	}

	return fmt.Sprintf("%s [%s]", label, style.Render(bar))
}

// renderGraph draws the newest values of data that fit in width as a block
// graph of the given height. Values are scaled against max; a non-positive
// max scales against the largest value in the window.
func renderGraph(data []float64, max float64, width, height int) string {
	if len(data) == 0 {
		return "Waiting for data..."
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	window := data
	if len(window) > width {
		window = window[len(window)-width:]
	}

	if max <= 0 {
		for _, v := range window {
			if v > max {
				max = v
			}
		}
		if max <= 0 {
			max = 1
		}
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, len(window))
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for x, val := range window {
		h := int(val / max * float64(height))
		if h > height {
			h = height
		}
		// Fill from bottom
		for y := 0; y < h; y++ {
			grid[height-1-y][x] = '█'
		}
	}

	rows := make([]string, height)
	for i, row := range grid {
		rows[i] = BarStyle.Render(string(row))
	}
	return strings.Join(rows, "\n")
}
