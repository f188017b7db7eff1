package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ticklite/internal/config"
	"ticklite/internal/notify"
	"ticklite/internal/reminder"
	"ticklite/internal/store"
	"ticklite/internal/task"
	"ticklite/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeEdit
	modeSearch
	modeConfirm
)

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmClearAll
)

type confirmState struct {
	kind   confirmKind
	taskID string
	title  string
}

type (
	storeChangedMsg struct{}
	clockMsg        time.Time
	reminderMsg     struct{ title, body string }
)

const clockInterval = 30 * time.Second

type Model struct {
	store   *store.Store
	cfg     config.Config
	view    view.View
	search  string
	tasks   []task.Task
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	banner  string
	confirm *confirmState
	meta    *metaState
	now     func() time.Time
	changes <-chan struct{}
}

// New builds the UI model. changes, when non-nil, wakes the model after
// mutations made outside the UI.
func New(st *store.Store, cfg config.Config, changes <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	v, err := view.ParseView(cfg.DefaultView)
	if err != nil {
		v = view.Inbox
	}

	m := Model{
		store:   st,
		cfg:     cfg,
		view:    v,
		input:   ti,
		mode:    modeList,
		now:     time.Now,
		changes: changes,
		status:  fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to switch view.", cfg.Keys.Add, cfg.Keys.NextView),
	}
	m.refresh()
	return m
}

// Run starts the terminal UI and a reminder scheduler whose notifications
// show up as a banner. It returns when the user quits or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, cfg config.Config, log *slog.Logger) error {
	changes, cancel := st.Subscribe()
	defer cancel()

	program := tea.NewProgram(New(st, cfg, changes), tea.WithAltScreen(), tea.WithContext(ctx))

	sink := notify.NewGate(notify.Fanout{
		notify.Log{Logger: log},
		notify.SinkFunc(func(title, body string) { program.Send(reminderMsg{title: title, body: body}) }),
	}, cfg.Reminder.Enabled)
	sched := reminder.New(st, sink,
		reminder.WithInterval(cfg.Reminder.IntervalDuration()),
		reminder.WithWindow(cfg.Reminder.WindowDuration()),
		reminder.WithDedupe(cfg.Reminder.Dedupe),
		reminder.WithLogger(log),
	)
	sched.Start(ctx)
	defer sched.Stop()

	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), clockTick())
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateMetadataMode(msg.String(), msg)
		case modeConfirm:
			return m.updateConfirm(msg.String())
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case storeChangedMsg:
		m.refresh()
		return m, m.waitForChange()
	case clockMsg:
		m.refresh()
		return m, clockTick()
	case reminderMsg:
		m.banner = msg.title
		if msg.body != "" {
			m.banner += " - " + msg.body
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// refresh re-derives the visible list from the store.
func (m *Model) refresh() {
	m.tasks = view.Classify(m.store.Snapshot(), m.view, m.now(), m.search)
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) selected() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case k.NextView:
		m.view = m.view.Next()
		m.cursor = 0
		m.refresh()
		m.status = "View: " + m.view.Title()
	case k.Add:
		return m.startMetadataEdit(nil)
	case k.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetadataEdit(&t)
	case k.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.store.ToggleComplete(t.ID)
		m.refresh()
		if t.Completed {
			m.status = "Reopened task"
		} else if t.Repeat != task.RepeatNone && t.Due != nil {
			m.status = "Completed task, next " + string(t.Repeat) + " occurrence added"
		} else {
			m.status = "Completed task"
		}
	case k.Snooze:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.store.Snooze(t.ID, m.cfg.SnoozeDays)
		m.refresh()
		m.status = fmt.Sprintf("Snoozed %q by %dd", t.Title, m.cfg.SnoozeDays)
	case k.Priority:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		next := task.PriorityHigh
		if t.Priority == task.PriorityHigh {
			next = task.PriorityMedium
		}
		m.store.Edit(t.ID, task.Patch{Priority: &next})
		m.refresh()
		m.status = "Priority: " + string(next)
	case k.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmState{kind: confirmDelete, taskID: t.ID, title: t.Title}
		m.mode = modeConfirm
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case k.ClearAll:
		m.confirm = &confirmState{kind: confirmClearAll}
		m.mode = modeConfirm
		m.status = "Clear ALL tasks? y/n"
	case k.Search:
		m.mode = modeSearch
		m.input.SetValue(m.search)
		m.input.Placeholder = "Search tasks..."
		m.status = "Search: type to filter, enter to keep, esc to clear"
		cmd := m.input.Focus()
		return m, cmd
	case k.ClearSearch:
		m.search = ""
		m.refresh()
		m.status = "Search cleared"
	}
	return m, nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.search = ""
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.input.Blur()
		m.mode = modeList
		m.status = fmt.Sprintf("%d matching %q", len(m.tasks), m.search)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.search = strings.TrimSpace(m.input.Value())
		m.refresh()
		return m, cmd
	}
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = nil
	m.mode = modeList
	switch key {
	case "y", "Y":
		if c == nil {
			m.status = "Nothing to confirm"
			return m, nil
		}
		switch c.kind {
		case confirmDelete:
			if m.store.Delete(c.taskID) {
				m.status = "Deleted task"
			} else {
				m.status = "Task already gone"
			}
		case confirmClearAll:
			m.store.ClearAll()
			m.status = "Cleared all tasks"
		}
		m.refresh()
	default:
		m.status = "Cancelled"
	}
	return m, nil
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
