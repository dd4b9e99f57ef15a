package ui

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"quickmenu/internal/config"
	"quickmenu/internal/domain"
	"quickmenu/internal/eventbus"
	"quickmenu/internal/logging"
	"quickmenu/internal/menu"
	"quickmenu/internal/search"
	"quickmenu/internal/session"
	"quickmenu/internal/ui/views"
)

// statusTimeout is how long transient status messages stay visible
const statusTimeout = 4 * time.Second

// Options tune the overlay behaviour
type Options struct {
	// OpenOnStart opens a session as soon as the program starts
	OpenOnStart bool
	// ExitAfterRun quits once a menu action ran successfully
	ExitAfterRun bool
}

// Model represents the UI state. All session mutation happens in Update.
type Model struct {
	bus  eventbus.EventBus
	ctrl *session.Controller
	opts Options

	keys     keyMap
	input    textinput.Model
	help     help.Model
	renderer *views.Renderer
	pager    *PagerOps

	width       int
	height      int
	showPaths   bool
	status      string
	statusKind  views.StatusKind
	statusSeq   int
	inPagerMode bool // tracks if we're currently in pager mode
	quitting    bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model driving ctrl
func NewModel(ctrl *session.Controller, bus eventbus.EventBus, opts Options) *Model {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search menus"

	return &Model{
		bus:       bus,
		ctrl:      ctrl,
		opts:      opts,
		keys:      defaultKeyMap(),
		input:     ti,
		help:      help.New(),
		renderer:  views.NewRenderer(),
		pager:     NewPagerOps(),
		showPaths: ctrl.Config().UISettings.ShowPaths,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	if m.opts.OpenOnStart {
		return m.processAction(ToggleAction{})
	}
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}
		open := m.ctrl.State() != domain.StateIdle
		if action := m.keys.actionFor(msg, open); action != nil {
			return m, m.processAction(action)
		}
		if !open {
			return m, nil
		}
		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.ctrl.OnQueryChanged(m.input.Value())
		}
		return m, cmd

	case tea.MouseMsg:
		if m.ctrl.State() != domain.StatePresenting {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		start, end := m.ctrl.Window()
		index := start + msg.Y - views.ResultsTop
		if msg.Y < views.ResultsTop || index >= end {
			return m, nil
		}
		// A click on the highlighted row runs it
		if index == m.ctrl.Highlighted() {
			return m, m.processAction(CommitAction{})
		}
		return m, m.processAction(SelectAction{Index: index})

	case outcomeMsg:
		return m, m.handleOutcome(msg.outcome)

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusKind = views.StatusNone
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("Failed to open pager: %v", msg.err), views.StatusError)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting || m.inPagerMode {
		return ""
	}

	state := views.ViewState{
		Width:      m.width,
		Height:     m.height,
		Session:    m.ctrl.State(),
		Target:     m.ctrl.Target(),
		Status:     m.status,
		StatusKind: m.statusKind,
		ShowPaths:  m.showPaths,
	}

	if state.Session == domain.StateIdle {
		state.Help = m.help.View(idleHelp{keys: m.keys})
		return m.renderer.Render(state)
	}

	state.Input = m.input.View()
	state.Terms = search.Terms(m.ctrl.Query())
	state.Results = m.ctrl.Results()
	state.Highlighted = m.ctrl.Highlighted()
	state.WindowStart, state.WindowEnd = m.ctrl.Window()
	state.Help = m.help.View(m.keys)
	return m.renderer.Render(state)
}

// processAction applies an action to the session and returns follow-up work
func (m *Model) processAction(action Action) tea.Cmd {
	switch a := action.(type) {
	case ToggleAction:
		task := m.ctrl.OnToggle()
		m.resetInput()
		if task == nil {
			if err := m.ctrl.Err(); err != nil {
				return m.setStatus(describeError(err, m.ctrl.Target(), ""), views.StatusError)
			}
			return nil
		}
		m.status = ""
		m.input.Focus()
		return runTask(task)

	case CloseAction:
		m.ctrl.OnClose()
		m.resetInput()
		return nil

	case CycleAction:
		m.ctrl.OnCycle(a.Forward)
		return nil

	case SelectAction:
		m.ctrl.OnSelect(a.Index)
		return nil

	case CommitAction:
		results := m.ctrl.Results()
		highlighted := m.ctrl.Highlighted()
		task := m.ctrl.OnCommit()
		if task == nil {
			return nil
		}
		m.resetInput()
		breadcrumb := results[highlighted].Breadcrumb
		m.status = fmt.Sprintf("Running %s", breadcrumb)
		m.statusKind = views.StatusLoading
		return runTask(task)

	case ShowTreeAction:
		tree := m.ctrl.Tree()
		if tree == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := menu.Print(&buf, tree); err != nil {
			return m.setStatus(err.Error(), views.StatusError)
		}
		return m.showPager(buf.String())

	case QuitAction:
		m.ctrl.OnClose()
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) handleOutcome(o session.Outcome) tea.Cmd {
	m.ctrl.Deliver(o)

	switch o := o.(type) {
	case session.Captured:
		// Only report failures of the session that is still current
		if o.Err != nil && errors.Is(m.ctrl.Err(), o.Err) && m.ctrl.State() == domain.StateIdle {
			m.input.Blur()
			return m.setStatus(describeError(o.Err, o.Target, ""), views.StatusError)
		}
		m.updateViewportHeight()

	case session.Executed:
		if o.Err != nil {
			// A newer session owns the status line now
			if o.Generation != m.ctrl.Generation() {
				return nil
			}
			return m.setStatus(describeError(o.Err, o.Target, o.Item.Breadcrumb), views.StatusError)
		}
		if m.opts.ExitAfterRun && m.ctrl.State() == domain.StateIdle {
			m.quitting = true
			return tea.Quit
		}
		return m.setStatus(fmt.Sprintf("Ran %s", o.Item.Breadcrumb), views.StatusDone)
	}
	return nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case config.ChangedEvent:
		if err := m.ctrl.ApplyConfig(e.Config); err != nil {
			logging.Log.WithError(err).Warn("Ignoring reloaded configuration")
			return m.setStatus(fmt.Sprintf("Configuration not applied: %v", err), views.StatusError)
		}
		if err := logging.SetLevel(e.Config.LogLevel); err != nil {
			logging.Log.WithError(err).Warn("Invalid log level in configuration")
		}
		m.showPaths = e.Config.UISettings.ShowPaths
		return m.setStatus("Configuration reloaded", views.StatusInfo)

	case domain.ErrorEvent:
		return m.setStatus(e.Message, views.StatusError)
	}
	return nil
}

// setStatus shows a message and schedules its removal
func (m *Model) setStatus(text string, kind views.StatusKind) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.status = text
	m.statusKind = kind
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) resetInput() {
	m.input.Reset()
	if m.ctrl.State() == domain.StateIdle {
		m.input.Blur()
	}
}

func (m *Model) updateViewportHeight() {
	if m.height <= 0 {
		return
	}
	rows := m.height - views.ResultsTop - views.FooterRows
	if rows < 1 {
		rows = 1
	}
	m.ctrl.SetViewportHeight(rows)
}

// showPager returns a command that shows content using ov pager
func (m *Model) showPager(content string) tea.Cmd {
	if m.program == nil {
		return m.setStatus("Pager is not available", views.StatusError)
	}
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})

		err := m.pager.Show(content)

		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return pagerMsg{err: err}
	}
}

// runTask runs session work off the interaction thread
func runTask(task session.Task) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{outcome: task()}
	}
}

// describeError turns a session error into a status line
func describeError(err error, target domain.Target, breadcrumb string) string {
	name := target.Name
	if name == "" {
		name = target.String()
	}
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Accessibility permission is required to read other applications' menus"
	case errors.Is(err, domain.ErrNoMenuBar):
		return fmt.Sprintf("%s has no menu bar that can be read", name)
	case errors.Is(err, domain.ErrEmpty):
		return fmt.Sprintf("%s has no menu items", name)
	case errors.Is(err, domain.ErrTimeout):
		return fmt.Sprintf("Reading the menus of %s timed out", name)
	case errors.Is(err, domain.ErrStaleTree):
		return fmt.Sprintf("The menus of %s changed before %s could run", name, breadcrumb)
	case errors.Is(err, domain.ErrActionFailed):
		return fmt.Sprintf("%s failed: %v", breadcrumb, err)
	}
	return err.Error()
}
