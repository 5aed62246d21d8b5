package screens

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/components"
	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/help"
	"github.com/mrsinham/echoreport/internal/fields"
)

// unsetOption is the select entry that leaves an enum blank.
const unsetOption = "Sin especificar"

// SectionScreen is the form of one wizard page, built from field specs.
type SectionScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel
	title     string
	index     int // 0-based page index
	total     int
	specs     []fields.FieldSpec
	text      map[string]*string
	multi     map[string]*[]string
	errMsg    string
	done      bool
	back      bool
	cancelled bool
	width     int
	height    int
}

// NewSectionScreen creates the form for specs, prefilled from current.
func NewSectionScreen(title string, index, total int, specs []fields.FieldSpec, current map[string]any, texts map[string]help.HelpText) *SectionScreen {
	s := &SectionScreen{
		helpPanel: components.NewHelpPanel(texts),
		title:     title,
		index:     index,
		total:     total,
		specs:     specs,
		text:      make(map[string]*string),
		multi:     make(map[string]*[]string),
	}

	group := make([]huh.Field, 0, len(specs))
	for _, spec := range specs {
		if spec.Kind == fields.KindMulti {
			items, _ := current[spec.Key].([]string)
			selected := append([]string(nil), items...)
			s.multi[spec.Key] = &selected
		} else {
			value := InputValue(current[spec.Key])
			s.text[spec.Key] = &value
		}
		group = append(group, s.field(spec))
	}

	s.form = huh.NewForm(huh.NewGroup(group...)).
		WithShowHelp(false).
		WithShowErrors(true)

	return s
}

func (s *SectionScreen) field(spec fields.FieldSpec) huh.Field {
	title := spec.Label
	if spec.Unit != "" {
		title += " (" + spec.Unit + ")"
	}

	switch spec.Kind {
	case fields.KindEnum:
		opts := []huh.Option[string]{huh.NewOption(unsetOption, "")}
		for _, c := range spec.Choices {
			opts = append(opts, huh.NewOption(c.Label, c.Value))
		}
		return huh.NewSelect[string]().
			Key(spec.ID()).
			Title(title).
			Options(opts...).
			Value(s.text[spec.Key])

	case fields.KindMulti:
		opts := make([]huh.Option[string], len(spec.Choices))
		for i, c := range spec.Choices {
			opts[i] = huh.NewOption(c.Label, c.Value)
		}
		return huh.NewMultiSelect[string]().
			Key(spec.ID()).
			Title(title).
			Options(opts...).
			Value(s.multi[spec.Key])
	}

	if spec.Multiline {
		return huh.NewText().
			Key(spec.ID()).
			Title(title).
			Lines(3).
			Value(s.text[spec.Key]).
			Validate(validator(spec))
	}
	return huh.NewInput().
		Key(spec.ID()).
		Title(title).
		Placeholder(placeholder(spec)).
		Value(s.text[spec.Key]).
		Validate(validator(spec))
}

func placeholder(spec fields.FieldSpec) string {
	switch spec.Kind {
	case fields.KindDate:
		return "AAAA-MM-DD"
	case fields.KindTime:
		return "HH:MM"
	case fields.KindNumber:
		return spec.Allowed()
	}
	return ""
}

// validator checks input with the same rules the session applies on merge.
func validator(spec fields.FieldSpec) func(string) error {
	return func(in string) error {
		if _, err := spec.Normalize(in); err != nil {
			var verr *fields.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("%s (%s)", verr.Reason, verr.Allowed)
			}
			return err
		}
		return nil
	}
}

// InputValue formats a stored value for a text input.
func InputValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// SetError shows a rejected submission above the form.
func (s *SectionScreen) SetError(err error) {
	s.errMsg = err.Error()
}

// Init implements tea.Model
func (s *SectionScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SectionScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc":
			s.back = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.helpPanel.SetSize(msg.Width/2, msg.Height/3)
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	// Update help panel
	if focused := s.form.GetFocusedField(); focused != nil {
		s.helpPanel.SetField(focused.GetKey())
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *SectionScreen) View() string {
	if s.cancelled {
		return "Cancelado.\n"
	}

	title := components.TitleStyle.Render(fmt.Sprintf("%s %d/%d", strings.ToUpper(s.title), s.index+1, s.total))

	parts := []string{title}
	if s.errMsg != "" {
		parts = append(parts, components.ErrorStyle.Render(s.errMsg))
	}
	parts = append(parts,
		"",
		s.form.View(),
		"",
		s.helpPanel.View(),
		"",
		"Tab: Siguiente campo | Enter: Confirmar | Esc: Volver",
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Values returns the form input keyed by field key: strings, or string lists
// for multi-select fields. Blank inputs are included so they unset the field.
func (s *SectionScreen) Values() map[string]any {
	out := make(map[string]any, len(s.specs))
	for _, spec := range s.specs {
		if items, ok := s.multi[spec.Key]; ok {
			out[spec.Key] = append([]string{}, (*items)...)
			continue
		}
		out[spec.Key] = *s.text[spec.Key]
	}
	return out
}

// Done returns true if the form was completed
func (s *SectionScreen) Done() bool { return s.done }

// Back returns true if the user asked for the previous page
func (s *SectionScreen) Back() bool { return s.back }

// Cancelled returns true if the user cancelled
func (s *SectionScreen) Cancelled() bool { return s.cancelled }
