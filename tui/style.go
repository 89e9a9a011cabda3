package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleChoice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleModal = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("228")).
			Padding(0, 1)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindChoice
	kindSystem // a bracketed line in game output
	kindError
	kindTrace
	kindInput  // echoed player input
	kindNotice // meta-command output
)

// errorPrefixes start the engine's input-error lines.
var errorPrefixes = []string{
	"There is no choice",
	"There is nothing to",
	"There is nowhere",
	"Which ",
	"Choose what?",
	"Nothing to undo.",
	"No such choice",
	"No such scene",
	"No modal is open",
	"A modal is waiting",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isChoiceLine(line):
		return kindChoice
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return kindError
		}
	}
	return kindNarrative
}

// isChoiceLine matches the numbered "  2. Text" lines of a choice list.
func isChoiceLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "  ")
	if !ok {
		return false
	}
	num, _, ok := strings.Cut(rest, ". ")
	return ok && num != "" && strings.Trim(num, "0123456789") == ""
}

// styledPlayerInput renders the echoed player input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
