package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/help"
)

const minHelpWidth = 24

var (
	helpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// HelpPanel shows the help of the focused form field.
type HelpPanel struct {
	texts   map[string]help.HelpText
	fieldID string
	width   int
}

// NewHelpPanel creates a help panel over texts keyed by field ID.
func NewHelpPanel(texts map[string]help.HelpText) *HelpPanel {
	return &HelpPanel{texts: texts, width: 64}
}

// SetField selects the field whose help is shown.
func (h *HelpPanel) SetField(id string) {
	h.fieldID = id
}

// SetSize adapts the panel to the terminal. Only the width is used: the
// panel grows with the number of detail lines.
func (h *HelpPanel) SetSize(width, _ int) {
	h.width = width
}

// View renders the help panel.
func (h *HelpPanel) View() string {
	style := helpPanelStyle.Width(max(h.width-4, minHelpWidth))

	text, ok := h.texts[h.fieldID]
	if !ok {
		return style.Render(helpDetailStyle.Render("Sin ayuda para este campo."))
	}

	lines := []string{
		helpTitleStyle.Render(text.Title),
		helpDescStyle.Render(text.Description),
	}
	for _, d := range strings.Split(text.Details, "\n") {
		if d != "" {
			lines = append(lines, helpDetailStyle.Render("· "+d))
		}
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
