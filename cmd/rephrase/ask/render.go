package askcmder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// listMarker matches numbering or bullets a model may prefix despite instructions.
var listMarker = regexp.MustCompile(`^\s*(?:(?:\d+[.)]|[-*•])\s+|\d+、\s*)`)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(4).Align(lipgloss.Right)
	lineStyle   = lipgloss.NewStyle().PaddingLeft(1)
)

// Lines splits relay text into display lines: trimmed, without list markers,
// empty lines dropped and duplicates removed (first occurrence wins).
func Lines(text string) []string {
	seen := make(map[string]struct{})
	var lines []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(listMarker.ReplaceAllString(raw, ""))
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	return lines
}

// Render formats lines as a numbered list under the original sentence.
func Render(sentence string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%d ways to say %q", len(lines), sentence)))
	sb.WriteString("\n")

	for i, line := range lines {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			numberStyle.Render(fmt.Sprintf("%d.", i+1)),
			lineStyle.Render(line),
		))
		sb.WriteString("\n")
	}

	return sb.String()
}
