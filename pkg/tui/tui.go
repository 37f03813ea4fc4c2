// Package tui hosts the Bubble Tea program for browsing and editing tasks.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

// resultMsg reports the outcome of an operation run off the update loop.
type resultMsg struct {
	status string
	tip    string
	err    error
}

// syncedMsg is sent when the task collection was reloaded from storage.
type syncedMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	ctx   context.Context
	tasks *app.TaskService
	chain *app.ChainService
	theme Theme

	width  int
	height int

	mode   mode
	cursor int
	input  textinput.Model

	busy   bool
	status string
	failed bool
	tip    string
}

// New constructs a root model. chain may be nil, which disables the wallet
// keys.
func New(ctx context.Context, tasks *app.TaskService, chain *app.ChainService) *Model {
	ti := textinput.New()
	ti.Placeholder = "New task title"
	ti.CharLimit = 256
	ti.Prompt = "+ "

	return &Model{
		ctx:    ctx,
		tasks:  tasks,
		chain:  chain,
		theme:  DefaultTheme(),
		input:  ti,
		status: "Ready",
		tip:    tasks.State().AITip,
	}
}

// Run launches the Bubble Tea program. Reloads delivered through
// TaskService.Sync redraw the board.
func Run(ctx context.Context, tasks *app.TaskService, chain *app.ChainService) error {
	p := tea.NewProgram(New(ctx, tasks, chain), tea.WithAltScreen(), tea.WithContext(ctx))
	tasks.OnSync(func(taskstore.State) { p.Send(syncedMsg{}) })
	defer tasks.OnSync(nil)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update routes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.input.SetWidth(max(10, v.Width-8))
	case resultMsg:
		m.busy = false
		m.failed = v.err != nil
		if v.err != nil {
			m.status = v.err.Error()
		} else {
			m.status = v.status
		}
		if v.tip != "" {
			m.tip = v.tip
		}
		m.clampCursor()
	case syncedMsg:
		m.clampCursor()
	case tea.KeyPressMsg:
		if m.mode == modeAdd {
			return m, m.handleAddKey(v)
		}
		return m, m.handleListKey(v)
	}

	if m.mode == modeAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleAddKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Reset()
		m.input.Blur()
		m.status = "Cancelled"
		return nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Reset()
		m.input.Blur()
		if title == "" {
			m.status = "Nothing to add"
			return nil
		}
		return m.run("Adding", func(ctx context.Context) resultMsg {
			t, err := m.tasks.Add(ctx, task.Draft{Title: title})
			return resultMsg{status: fmt.Sprintf("Added %q", t.Title), err: err}
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleListKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "a":
		m.mode = modeAdd
		return m.input.Focus()
	case "f":
		return m.cycleFilter()
	case "s":
		return m.cycleSort()
	case "r":
		return m.run("Reloading", func(ctx context.Context) resultMsg {
			st, err := m.tasks.Fetch(ctx)
			return resultMsg{status: fmt.Sprintf("Loaded %d tasks", len(st.Tasks)), err: err}
		})
	case "p":
		return m.run("Asking the assistant", func(ctx context.Context) resultMsg {
			res, err := m.tasks.Prioritize(ctx)
			return resultMsg{status: "Prioritised", tip: res.MotivationalTip, err: err}
		})
	}

	if m.busy {
		return nil
	}
	selected, ok := m.selected()
	switch msg.String() {
	case "space", " ", "x", "enter":
		if !ok {
			return nil
		}
		return m.run("Saving", func(ctx context.Context) resultMsg {
			t, err := m.tasks.Complete(ctx, selected.ID)
			return resultMsg{status: fmt.Sprintf("%q is %s", t.Title, t.Status), err: err}
		})
	case "d":
		if !ok {
			return nil
		}
		return m.run("Deleting", func(ctx context.Context) resultMsg {
			err := m.tasks.Delete(ctx, selected.ID)
			return resultMsg{status: fmt.Sprintf("Deleted %q", selected.Title), err: err}
		})
	case "w":
		if m.chain == nil {
			return nil
		}
		return m.run("Connecting wallet", func(ctx context.Context) resultMsg {
			st, err := m.chain.Ready(ctx)
			return resultMsg{status: "Wallet " + st.ShortAddress() + " on " + st.NetworkID, err: err}
		})
	case "v":
		if !ok || m.chain == nil {
			return nil
		}
		return m.run("Verifying on chain", func(ctx context.Context) resultMsg {
			if _, err := m.chain.Ready(ctx); err != nil {
				return resultMsg{err: err}
			}
			rcpt, err := m.chain.VerifyTask(ctx, selected.ID)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: fmt.Sprintf("Verified %q", rcpt.Task.Title)}
		})
	}
	return nil
}

// run marks the model busy and returns a command that performs fn.
func (m *Model) run(label string, fn func(context.Context) resultMsg) tea.Cmd {
	m.busy = true
	m.failed = false
	m.status = label + "…"
	ctx := m.ctx
	return func() tea.Msg {
		return fn(ctx)
	}
}

func (m *Model) cycleFilter() tea.Cmd {
	filters := view.AllFilters()
	next := filters[(indexOf(filters, m.tasks.State().Filter)+1)%len(filters)]
	if _, err := m.tasks.SetFilter(next); err != nil {
		return m.fail(err)
	}
	m.status = "Filter: " + string(next)
	m.clampCursor()
	return nil
}

func (m *Model) cycleSort() tea.Cmd {
	keys := view.AllSortKeys()
	next := keys[(indexOf(keys, m.tasks.State().Sort)+1)%len(keys)]
	if _, err := m.tasks.SetSort(next); err != nil {
		return m.fail(err)
	}
	m.status = "Sort: " + string(next)
	return nil
}

func (m *Model) fail(err error) tea.Cmd {
	return func() tea.Msg { return resultMsg{err: err} }
}

func (m *Model) selected() (task.Task, bool) {
	v := m.tasks.State().View
	if m.cursor < 0 || m.cursor >= len(v) {
		return task.Task{}, false
	}
	return v[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.tasks.State().View)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}

// frameWidth is the usable width inside the frame.
func (m *Model) frameWidth() int {
	w := m.width - m.theme.Frame.GetHorizontalFrameSize()
	if w < 20 {
		return 78
	}
	return w
}
