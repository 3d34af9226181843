// Package format renders collected values for display. Every function is
// pure.
package format

import (
	"fmt"
	"math"
)

// ByteStyle selects the unit base for byte counts.
type ByteStyle int

const (
	// Memory uses binary units (1 KB = 1024 B), as memory sizes are reported.
	Memory ByteStyle = iota
	// File uses decimal units (1 KB = 1000 B), as disk capacities are reported.
	File
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// Bytes formats a byte count, e.g. "1.5 KB".
func Bytes(b uint64, style ByteStyle) string {
	base := 1024.0
	if style == File {
		base = 1000
	}
	if float64(b) < base {
		return fmt.Sprintf("%d B", b)
	}
	v := float64(b)
	exp := 0
	for v >= base && exp < len(byteUnits)-1 {
		v /= base
		exp++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[exp])
}

// Speed formats a byte rate.
func Speed(bytesPerSecond float64) string {
	switch {
	case bytesPerSecond < 1024:
		return fmt.Sprintf("%.0f B/s", math.Max(bytesPerSecond, 0))
	case bytesPerSecond < 1024*1024:
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	default:
		return fmt.Sprintf("%.2f MB/s", bytesPerSecond/1024/1024)
	}
}

// Percent formats a percentage with the given number of decimals.
func Percent(v float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, v)
}

// Temperature formats a Celsius reading; 0 means unavailable.
func Temperature(c float64) string {
	if c <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d°C", int(math.Round(c)))
}

// RPM formats a fan speed; 0 means unavailable.
func RPM(rpm int) string {
	if rpm <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d RPM", rpm)
}

// Minutes formats a remaining-time estimate; negative means still calculating.
func Minutes(m int) string {
	if m < 0 {
		return "Calculating..."
	}
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}

// Uptime formats seconds as days, hours and minutes.
func Uptime(seconds uint64) string {
	d := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
