package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/components"
	"github.com/mrsinham/echoreport/internal/render"
)

// Summary actions. Export and edit actions carry an argument after the
// colon: the format name, or the page index.
const (
	ActionGenerate     = "generate"
	ActionSave         = "save"
	ActionExit         = "exit"
	ActionExportPrefix = "export:"
	ActionEditPrefix   = "edit:"
)

const (
	previewWidth  = 80
	previewHeight = 18
)

var (
	previewPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)

	emptyPreviewStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)
)

// SummaryData is what the summary screen shows.
type SummaryData struct {
	Preview string   // markdown of the current report, empty before generation
	Stale   bool     // the session changed after the preview was generated
	Status  string   // outcome of the last action
	Err     string   // failure of the last action
	Pages   []string // page titles, for the edit actions
}

// SummaryScreen shows the report preview and the available actions
type SummaryScreen struct {
	form      *huh.Form
	preview   viewport.Model
	data      SummaryData
	action    string
	done      bool
	cancelled bool
	width     int
	height    int
}

// NewSummaryScreen creates a new summary screen
func NewSummaryScreen(data SummaryData) *SummaryScreen {
	s := &SummaryScreen{
		data:   data,
		action: ActionGenerate,
	}

	s.preview = viewport.New(previewWidth, previewHeight)
	if data.Preview != "" {
		s.preview.SetContent(lipgloss.NewStyle().Width(previewWidth - 2).Render(data.Preview))
	} else {
		s.preview.SetContent(emptyPreviewStyle.Render("Todavía no se ha generado el informe."))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Seleccione una acción").
				Options(s.options()...).
				Value(&s.action),
		),
	).WithShowHelp(false)

	return s
}

func (s *SummaryScreen) options() []huh.Option[string] {
	label := "Generar informe"
	if s.data.Preview != "" {
		label = "Regenerar informe"
	}
	opts := []huh.Option[string]{huh.NewOption(label, ActionGenerate)}

	if s.data.Preview != "" {
		for _, f := range render.Formats() {
			opts = append(opts, huh.NewOption(
				fmt.Sprintf("Exportar %s (.%s)", strings.ToUpper(f.String()), f.Extension()),
				ActionExportPrefix+f.String(),
			))
		}
	}

	opts = append(opts, huh.NewOption("Guardar sesión (YAML)", ActionSave))
	for i, title := range s.data.Pages {
		opts = append(opts, huh.NewOption("Editar: "+title, fmt.Sprintf("%s%d", ActionEditPrefix, i)))
	}
	return append(opts, huh.NewOption("Salir", ActionExit))
}

// Init implements tea.Model
func (s *SummaryScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SummaryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			s.cancelled = true
			return s, tea.Quit
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.preview, cmd = s.preview.Update(msg)
			return s, cmd
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		if msg.Height > 20 {
			s.preview.Height = min(msg.Height-14, 40)
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *SummaryScreen) View() string {
	if s.cancelled {
		return "Cancelado.\n"
	}

	title := components.TitleStyle.Render("RESUMEN - Vista previa del informe")

	header := []string{title}
	if s.data.Stale {
		header = append(header, components.StaleStyle.Render("⚠ Los datos cambiaron después de generar el informe. Regenere antes de exportar."))
	}
	if s.data.Status != "" {
		header = append(header, components.StatusStyle.Render("✓ "+s.data.Status))
	}
	if s.data.Err != "" {
		header = append(header, components.ErrorStyle.Render("✗ "+s.data.Err))
	}

	parts := append(header,
		"",
		previewPanelStyle.Render(s.preview.View()),
		"",
		s.form.View(),
		"",
		"Enter: Ejecutar | PgUp/PgDn: Desplazar vista previa | Esc: Salir",
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Done returns true if an action was selected
func (s *SummaryScreen) Done() bool { return s.done }

// Cancelled returns true if the user cancelled
func (s *SummaryScreen) Cancelled() bool { return s.cancelled }

// Action returns the selected action
func (s *SummaryScreen) Action() string { return s.action }
