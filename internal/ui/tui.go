// Package ui provides the terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/coordinator"
	"github.com/nibzard/todo-go/internal/navigation"
	"github.com/nibzard/todo-go/internal/task"
)

const (
	snackbarTimeout = 3 * time.Second
	toastTimeout    = 2 * time.Second
)

// Deps are the collaborators the terminal UI drives.
type Deps struct {
	List      *coordinator.List
	Navigator *navigation.Navigator
	// Apply delivers closures to run on the UI goroutine. Nil when the
	// coordinators use an inline scheduler.
	Apply       <-chan func()
	SplashDelay time.Duration
	Logger      *log.Logger
}

// RunTUI starts the terminal UI and blocks until it exits.
func RunTUI(ctx context.Context, deps Deps) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := NewModel(deps)
	defer model.Close()
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// Model is the root bubbletea model. It renders the screen named by the
// navigator's current route.
type Model struct {
	deps   Deps
	list   *coordinator.List
	editor *coordinator.Editor
	nav    *navigation.Navigator
	logger *log.Logger

	width  int
	height int

	spinner spinner.Model
	search  textinput.Model
	title   textinput.Model
	desc    textarea.Model

	listKeys    listKeyMap
	taskKeys    taskKeyMap
	confirmKeys confirmKeyMap

	cursor           int
	confirmDeleteAll bool
	toast            string
	toastSeq         int
	lastSnackbar     coordinator.Snackbar
	snackbarSeq      int

	unsubscribe []func()
}

type applyMsg struct {
	fn func()
}

type applyClosedMsg struct{}

type splashDoneMsg struct{}

type snackbarTimeoutMsg struct {
	seq int
}

type toastTimeoutMsg struct {
	seq int
}

// NewModel builds the root model and attaches the navigator to the
// coordinators.
func NewModel(deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 100
	title.Width = 50

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.SetWidth(50)
	desc.SetHeight(6)
	desc.ShowLineNumbers = false

	m := &Model{
		deps:        deps,
		list:        deps.List,
		editor:      deps.List.Editor(),
		nav:         deps.Navigator,
		logger:      logger,
		spinner:     s,
		search:      search,
		title:       title,
		desc:        desc,
		listKeys:    newListKeyMap(),
		taskKeys:    newTaskKeyMap(),
		confirmKeys: newConfirmKeyMap(),
	}

	m.unsubscribe = append(m.unsubscribe,
		m.nav.Attach(m.list, m.editor),
		m.nav.Current.Subscribe(m.onRoute),
		m.editor.Fields.Subscribe(m.syncInputs),
	)
	return m
}

// Close detaches the model from the coordinators.
func (m *Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
}

func (m *Model) Init() tea.Cmd {
	m.list.Start()
	cmds := []tea.Cmd{m.spinner.Tick, splashCmd(m.deps.SplashDelay)}
	if m.deps.Apply != nil {
		cmds = append(cmds, waitForApply(m.deps.Apply))
	}
	return tea.Batch(cmds...)
}

func splashCmd(d time.Duration) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return splashDoneMsg{} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return splashDoneMsg{}
	})
}

func waitForApply(ch <-chan func()) tea.Cmd {
	return func() tea.Msg {
		fn, ok := <-ch
		if !ok {
			return applyClosedMsg{}
		}
		return applyMsg{fn: fn}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case applyMsg:
		msg.fn()
		cmds = append(cmds, waitForApply(m.deps.Apply))
	case applyClosedMsg:
		m.logger.Debug("apply queue closed")
	case splashDoneMsg:
		if m.nav.Route().Screen == navigation.ScreenSplash {
			m.nav.ToListFromSplash()
		}
	case snackbarTimeoutMsg:
		if msg.seq == m.snackbarSeq && !m.list.Snackbar.Get().CanUndo() {
			m.list.Snackbar.Set(coordinator.Snackbar{})
		}
	case toastTimeoutMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		var cmd tea.Cmd
		switch m.nav.Route().Screen {
		case navigation.ScreenList:
			cmd = m.updateList(msg)
		case navigation.ScreenTask:
			cmd = m.updateTask(msg)
		default:
			if msg.String() == "ctrl+c" {
				cmd = tea.Quit
			}
		}
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.watchSnackbar())
	return m, tea.Batch(cmds...)
}

// watchSnackbar schedules auto-dismissal of plain notifications. Undo
// notifications are cleared by the undo window instead.
func (m *Model) watchSnackbar() tea.Cmd {
	sb := m.list.Snackbar.Get()
	if sb == m.lastSnackbar {
		return nil
	}
	m.lastSnackbar = sb
	m.snackbarSeq++
	if !sb.Visible() || sb.CanUndo() {
		return nil
	}
	seq := m.snackbarSeq
	return tea.Tick(snackbarTimeout, func(time.Time) tea.Msg {
		return snackbarTimeoutMsg{seq: seq}
	})
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastTimeout, func(time.Time) tea.Msg {
		return toastTimeoutMsg{seq: seq}
	})
}

// onRoute prepares the inputs for the screen being entered.
func (m *Model) onRoute(r navigation.Route) {
	switch r.Screen {
	case navigation.ScreenTask:
		m.toast = ""
		m.title.Focus()
		m.desc.Blur()
		m.search.Blur()
	case navigation.ScreenList:
		m.title.Blur()
		m.desc.Blur()
		m.confirmDeleteAll = false
	}
}

// syncInputs copies editor buffer changes that did not come from typing.
func (m *Model) syncInputs(b coordinator.EditBuffer) {
	if m.title.Value() != b.Title {
		m.title.SetValue(b.Title)
	}
	if m.desc.Value() != b.Description {
		m.desc.SetValue(b.Description)
	}
}

func (m *Model) resize() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.search.Width = w - 4
	m.title.Width = w
	m.desc.SetWidth(w)
}

func (m *Model) View() string {
	switch m.nav.Route().Screen {
	case navigation.ScreenList:
		return m.viewList()
	case navigation.ScreenTask:
		return m.viewTask()
	default:
		return m.viewSplash()
	}
}

func (m *Model) viewSplash() string {
	content := titleStyle.Render("todo") + "\n" + mutedStyle.Render("keep track of what matters")
	if m.width == 0 || m.height == 0 {
		return content + "\n"
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 3 || len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// nextSort cycles HIGH, LOW, NONE, MEDIUM.
func nextSort(p task.Priority) task.Priority {
	switch p {
	case task.PriorityHigh:
		return task.PriorityLow
	case task.PriorityLow:
		return task.PriorityNone
	case task.PriorityNone:
		return task.PriorityMedium
	default:
		return task.PriorityHigh
	}
}

// nextPriority cycles the editor priority through every value.
func nextPriority(p task.Priority) task.Priority {
	all := task.Priorities()
	for i, q := range all {
		if q == p {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
