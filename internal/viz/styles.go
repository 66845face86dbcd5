package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/seekbot/internal/action"
	"github.com/san-kum/seekbot/internal/servo"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

var stateColors = map[servo.State]lipgloss.Color{
	servo.Searching:   "#ffaa00",
	servo.Tracking:    "#00ccff",
	servo.Approaching: "#ff00ff",
	servo.Halted:      "#00ff88",
}

var statusColors = map[action.Status]lipgloss.Color{
	action.Succeeded: "#00ff88",
	action.Aborted:   "#ff4444",
	action.Canceled:  "#ffaa00",
	action.Rejected:  "#ff4444",
	action.Executing: "#00ccff",
}

// State renders an approach state badge.
func State(s servo.State) string {
	c, ok := stateColors[s]
	if !ok {
		c = "#888899"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(s.String())
}

// Status renders a goal status badge.
func Status(s action.Status) string {
	c, ok := statusColors[s]
	if !ok {
		c = "#888899"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(s.String())
}

// Result renders a one-line summary of a finished goal.
func Result(r action.Result) string {
	return Status(r.Status) + " " + r.Message
}

// Row renders a label/value line.
func Row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}

// ProgressBar renders how much of the approach distance is covered. percent
// is clamped to [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders a one-row chart of the most recent values.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}
