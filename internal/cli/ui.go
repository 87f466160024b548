package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	stylePath    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleLazy    = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string, cached bool) {
	status, style := iconFresh, styleComputed
	if cached {
		status, style = iconCached, styleCached
	}
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path)+StyleDim.Render(" · ")+style.Render(status))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// Tree Output
// =============================================================================

// styleTree colors the text rendering of a conversion tree: types on the
// resolved path in green, lazy nodes dimmed.
func styleTree(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = StyleTitle.Render(line)
		case strings.Contains(line, ">>"):
			start := strings.Index(line, ">>")
			end := strings.Index(line, "<<")
			if end > start {
				lines[i] = line[:start] + stylePath.Render(line[start+2:end]) + line[end+2:]
			}
		case strings.HasSuffix(line, "(lazy)"):
			lines[i] = styleLazy.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
