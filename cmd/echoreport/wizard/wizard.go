package wizard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/components"
	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/help"
	"github.com/mrsinham/echoreport/cmd/echoreport/wizard/screens"
	"github.com/mrsinham/echoreport/internal/app"
	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/render"
)

// DefaultSessionPath is proposed when saving the session.
const DefaultSessionPath = "sesion-ete.yaml"

// Wizard is the main orchestrator for the wizard interface. It never touches
// the session directly: every change goes through the controller.
type Wizard struct {
	ctrl *app.Controller
	log  *zap.Logger

	// Current phase
	phase Phase

	pages     []Page
	helpTexts map[string]help.HelpText

	// Screen instances
	sectionScreen *screens.SectionScreen
	summaryScreen *screens.SummaryScreen

	// Save session form
	saveForm    *huh.Form
	sessionPath string

	currentPage int
	// editing returns to the summary after a single page
	editing bool

	// Outcome of the last summary action
	status  string
	lastErr error

	// Window size
	width  int
	height int

	// Final state
	cancelled bool
	finished  bool
}

// NewWizard creates a wizard over ctrl. Pages are prefilled from the
// controller's session.
func NewWizard(ctrl *app.Controller, log *zap.Logger) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}
	reg := ctrl.Session().Registry()
	w := &Wizard{
		ctrl:        ctrl,
		log:         log,
		pages:       Pages(reg),
		helpTexts:   help.Texts(reg),
		sessionPath: DefaultSessionPath,
	}
	w.transitionToPage(0)
	return w
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	return w.sectionScreen.Init()
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window size for all phases
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = wsm.Width
		w.height = wsm.Height
	}

	switch w.phase {
	case PhaseSection:
		return w.updateSection(msg)
	case PhaseSummary:
		return w.updateSummary(msg)
	case PhaseSaveSession:
		return w.updateSaveSession(msg)
	}

	return w, nil
}

// View implements tea.Model.
func (w *Wizard) View() string {
	switch w.phase {
	case PhaseSection:
		return w.sectionScreen.View()
	case PhaseSummary:
		return w.summaryScreen.View()
	case PhaseSaveSession:
		return w.viewSaveSession()
	}

	return ""
}

// transitionToPage opens the form of a page, prefilled from the session.
func (w *Wizard) transitionToPage(index int) {
	w.currentPage = index
	w.phase = PhaseSection
	page := w.pages[index]
	w.sectionScreen = screens.NewSectionScreen(
		page.Title,
		index,
		len(w.pages),
		page.Specs,
		w.ctrl.Session().Values(page.Section),
		w.helpTexts,
	)
}

// updateSection handles updates while a page form is shown.
func (w *Wizard) updateSection(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.sectionScreen.Update(msg)
	if ss, ok := model.(*screens.SectionScreen); ok {
		w.sectionScreen = ss
	}

	if w.sectionScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.sectionScreen.Back() {
		if w.editing || w.currentPage == 0 {
			return w.transitionToSummary()
		}
		w.transitionToPage(w.currentPage - 1)
		return w, w.sectionScreen.Init()
	}

	if w.sectionScreen.Done() {
		if err := w.submitPage(); err != nil {
			// Reopen the page with the rejection shown.
			values := w.sectionScreen.Values()
			page := w.pages[w.currentPage]
			w.sectionScreen = screens.NewSectionScreen(page.Title, w.currentPage, len(w.pages), page.Specs, values, w.helpTexts)
			w.sectionScreen.SetError(err)
			return w, w.sectionScreen.Init()
		}
		return w.advance()
	}

	return w, cmd
}

// submitPage dispatches the current page as a section submission.
func (w *Wizard) submitPage() error {
	page := w.pages[w.currentPage]
	_, err := w.ctrl.Dispatch(context.Background(), app.SubmitSection{
		Section: page.Section,
		Values:  w.sectionScreen.Values(),
	})
	return err
}

// advance moves to the next page or the summary.
func (w *Wizard) advance() (tea.Model, tea.Cmd) {
	if !w.editing && w.currentPage+1 < len(w.pages) {
		w.transitionToPage(w.currentPage + 1)
		return w, w.sectionScreen.Init()
	}
	w.editing = false
	return w.transitionToSummary()
}

// summaryData collects what the summary shows from the controller.
func (w *Wizard) summaryData() screens.SummaryData {
	data := screens.SummaryData{
		Status: w.status,
		Stale:  w.ctrl.Stale(),
	}
	if w.lastErr != nil {
		data.Err = w.lastErr.Error()
	}
	if rec, ok := w.ctrl.Record(); ok {
		data.Preview = render.Markdown(rec)
	}
	for _, p := range w.pages {
		data.Pages = append(data.Pages, p.Title)
	}
	return data
}

// transitionToSummary moves to the summary screen.
func (w *Wizard) transitionToSummary() (tea.Model, tea.Cmd) {
	w.phase = PhaseSummary
	w.summaryScreen = screens.NewSummaryScreen(w.summaryData())
	return w, w.summaryScreen.Init()
}

// updateSummary handles updates in the summary phase.
func (w *Wizard) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.summaryScreen.Update(msg)
	if ss, ok := model.(*screens.SummaryScreen); ok {
		w.summaryScreen = ss
	}

	if w.summaryScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.summaryScreen.Done() {
		return w.runAction(w.summaryScreen.Action())
	}

	return w, cmd
}

// runAction executes a summary action and shows its outcome.
func (w *Wizard) runAction(action string) (tea.Model, tea.Cmd) {
	w.status, w.lastErr = "", nil

	switch {
	case action == screens.ActionGenerate:
		if _, err := w.ctrl.Dispatch(context.Background(), app.GenerateReport{}); err != nil {
			w.lastErr = err
		} else {
			w.status = "Informe generado"
		}

	case strings.HasPrefix(action, screens.ActionExportPrefix):
		w.export(strings.TrimPrefix(action, screens.ActionExportPrefix))

	case action == screens.ActionSave:
		return w.transitionToSaveSession()

	case strings.HasPrefix(action, screens.ActionEditPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(action, screens.ActionEditPrefix))
		if err != nil || index < 0 || index >= len(w.pages) {
			w.lastErr = fmt.Errorf("unknown page %q", action)
			break
		}
		w.editing = true
		w.transitionToPage(index)
		return w, w.sectionScreen.Init()

	case action == screens.ActionExit:
		w.finished = true
		return w, tea.Quit
	}

	return w.transitionToSummary()
}

func (w *Wizard) export(name string) {
	f, err := render.ParseFormat(name)
	if err != nil {
		w.lastErr = err
		return
	}

	res, err := w.ctrl.Dispatch(context.Background(), app.Export{Format: f})
	var perr *export.PersistenceError
	switch {
	case errors.As(err, &perr) && res.Artifact != nil:
		w.lastErr = fmt.Errorf("%s generado pero no guardado: %w", res.Artifact.Name, err)
	case err != nil:
		w.lastErr = err
	default:
		w.status = "Exportado: " + res.Artifact.Location
		w.log.Info("artifact exported from wizard",
			zap.String("name", res.Artifact.Name),
			zap.Stringer("format", f),
		)
	}
}

// transitionToSaveSession shows the save session dialog.
func (w *Wizard) transitionToSaveSession() (tea.Model, tea.Cmd) {
	w.phase = PhaseSaveSession

	w.saveForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("session_path").
				Title("Guardar sesión en").
				Description("Ruta del archivo YAML").
				Value(&w.sessionPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	return w, w.saveForm.Init()
}

// updateSaveSession handles updates in the save session phase.
func (w *Wizard) updateSaveSession(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// Go back to summary
			return w.transitionToSummary()
		case "ctrl+c":
			w.cancelled = true
			return w, tea.Quit
		}
	}

	form, cmd := w.saveForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.saveForm = f
	}

	if w.saveForm.State == huh.StateCompleted {
		w.saveSession(w.sessionPath)
		return w.transitionToSummary()
	}

	return w, cmd
}

func (w *Wizard) saveSession(path string) {
	if err := SaveToYAML(FromSession(w.ctrl.Session()), path); err != nil {
		w.lastErr = err
		return
	}
	w.status = "Sesión guardada en " + path
	w.log.Info("session saved", zap.String("path", path))
}

// viewSaveSession renders the save session dialog.
func (w *Wizard) viewSaveSession() string {
	title := components.TitleStyle.Render("Guardar sesión")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		w.saveForm.View(),
		"",
		"Enter: Guardar | Esc: Volver",
	)

	return content
}

// Run starts the interactive wizard over ctrl. If fromSession is provided,
// the session is prefilled from that YAML file first.
func Run(ctrl *app.Controller, fromSession string, log *zap.Logger) error {
	if fromSession != "" {
		absPath, err := filepath.Abs(fromSession)
		if err != nil {
			return fmt.Errorf("resolving session path: %w", err)
		}

		loaded, err := LoadFromYAML(absPath)
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		if err := Apply(context.Background(), ctrl, loaded); err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
	}

	// Create and run the wizard
	wizard := NewWizard(ctrl, log)
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}

	return nil
}
