// Package ui provides terminal color and formatting helpers for the
// pertsim CLI's progress output and result summaries.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored pertsim banner to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	curve := color.New(color.FgCyan, color.Faint)
	sep := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	bars.Fprintln(w, "   |   .  ,-'''-.  ,  .  .    |")
	curve.Fprintln(w, "   |  /  /       \\  \\  .  .   |")
	sep.Fprintln(w, "   |==========================|")
	brand.Fprintln(w, "   |  P E R T S I M           |")
	sep.Fprintln(w, "   |==========================|")
	curve.Fprintln(w, "   |  O -- M -- P  three-point |")
	bars.Fprintln(w, "   |  .  .  ,-'''-.  ,  .  .  |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Monte Carlo project timelines\n", Dim("Δ"))
	fmt.Fprintln(w)
}

// idPalette is a set of distinct bold colors used to differentiate task IDs
// across a progress table or criticality report.
var idPalette = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// paletteIndexFor hashes a task ID into idPalette so a given task ID always
// renders in the same color for the duration of a run.
func paletteIndexFor(taskID string) int {
	var h uint32
	for _, r := range taskID {
		h = h*31 + uint32(r)
	}
	return int(h % uint32(len(idPalette)))
}

// TaskPrefix returns a colored "[task-id]" prefix, used when printing
// per-task criticality or sensitivity rows to the terminal.
func TaskPrefix(taskID string) string {
	c := idPalette[paletteIndexFor(taskID)]
	return Dim("[") + c(taskID) + Dim("]")
}

// PriorityIcon returns a colored icon for a task_criticality priority
// level, as computed in internal/report (Critical/High/Medium/Low).
func PriorityIcon(level string) string {
	switch level {
	case "Critical":
		return Red("●")
	case "High":
		return Yellow("●")
	case "Medium":
		return Cyan("○")
	case "Low":
		return Dim("○")
	default:
		return Dim("○")
	}
}

// RiskLabel returns a colored label for a sensitivity risk level
// (High/Medium/Low), as computed in internal/report.
func RiskLabel(level string) string {
	switch level {
	case "High":
		return BoldRed(level)
	case "Medium":
		return BoldYellow(level)
	case "Low":
		return Dim(level)
	default:
		return level
	}
}

// ProgressBar renders a fixed-width textual progress bar for completed/total.
func ProgressBar(completed, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 0 {
		width = 30
	}
	filled := completed * width / total
	if filled > width {
		filled = width
	}
	bar := make([]byte, width)
	for i := range bar {
		if i < filled {
			bar[i] = '='
		} else {
			bar[i] = ' '
		}
	}
	pct := float64(completed) / float64(total) * 100
	return fmt.Sprintf("[%s] %5.1f%%", Cyan(string(bar)), pct)
}
