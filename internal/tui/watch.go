// Package tui provides the terminal user interface for artplan's
// watch mode: a live plan view that replans whenever the backlog
// changes on disk.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/traincrew/artplan/internal/engine"
)

// PlanUpdateMsg carries a finished planning run into the view.
type PlanUpdateMsg struct {
	Result *engine.PlanResult
	Err    error
	At     time.Time
}

// FileChangedMsg signals that a watched input file changed.
type FileChangedMsg struct {
	Path string
}

// ReplanFunc runs the planning pipeline and reports the outcome.
type ReplanFunc func() PlanUpdateMsg

// WatchApp is the bubbletea model for watch mode.
type WatchApp struct {
	replan ReplanFunc

	spinner  spinner.Model
	planning bool
	result   *engine.PlanResult
	err      error
	updated  time.Time
	quitting bool
	width    int
	height   int

	view *PlanView
}

// NewWatchApp creates a WatchApp that calls replan for the initial
// plan and after every file change.
func NewWatchApp(replan ReplanFunc) *WatchApp {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &WatchApp{
		replan:   replan,
		spinner:  sp,
		planning: true,
		view:     NewPlanView(),
	}
}

// NewWatchProgram creates a tea.Program running the watch app.
// External events (file changes) are delivered with Program.Send.
func NewWatchProgram(replan ReplanFunc) (*tea.Program, *WatchApp) {
	app := NewWatchApp(replan)
	return tea.NewProgram(app, tea.WithAltScreen()), app
}

func (a *WatchApp) replanCmd() tea.Cmd {
	return func() tea.Msg {
		return a.replan()
	}
}

// Init implements tea.Model.
func (a *WatchApp) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.replanCmd())
}

// Update implements tea.Model.
func (a *WatchApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "r":
			if !a.planning {
				a.planning = true
				return a, tea.Batch(a.spinner.Tick, a.replanCmd())
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.view.SetSize(msg.Width, msg.Height)

	case FileChangedMsg:
		if !a.planning {
			a.planning = true
			return a, tea.Batch(a.spinner.Tick, a.replanCmd())
		}

	case PlanUpdateMsg:
		a.planning = false
		a.err = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
		}
		a.updated = msg.At

	case spinner.TickMsg:
		if a.planning {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
	}

	return a, nil
}

// View implements tea.Model.
func (a *WatchApp) View() string {
	if a.quitting {
		return ""
	}

	header := a.view.RenderHeader(a.updated)
	body := ""
	switch {
	case a.err != nil:
		body = a.view.RenderError(a.err)
	case a.result != nil:
		body = a.view.RenderPlan(a.result)
	}

	status := ""
	if a.planning {
		status = a.spinner.View() + " replanning..."
	}

	footer := a.view.RenderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, footer)
}
