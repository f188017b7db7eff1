package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ticklite/internal/task"
)

const (
	fieldTitle = iota
	fieldNotes
	fieldDue
	fieldPriority
	fieldTags
	fieldRepeat
)

func metaFields() []string {
	return []string{"title", "notes", "due (YYYY-MM-DD HH:MM)", "priority (low/medium/high)", "tags (comma separated)", "repeat (none/daily/weekly/monthly/yearly)"}
}

// metaState holds the editor fields as text. An empty taskID means the
// editor is creating a new task.
type metaState struct {
	taskID string
	values []string
	index  int
}

func newMetaState(t *task.Task) *metaState {
	ms := &metaState{values: make([]string, len(metaFields()))}
	ms.values[fieldPriority] = string(task.PriorityMedium)
	ms.values[fieldRepeat] = string(task.RepeatNone)
	if t == nil {
		return ms
	}
	ms.taskID = t.ID
	ms.values[fieldTitle] = t.Title
	ms.values[fieldNotes] = t.Notes
	ms.values[fieldDue] = task.FormatDue(t.Due)
	ms.values[fieldPriority] = string(t.Priority)
	ms.values[fieldTags] = strings.Join(t.Tags, ", ")
	ms.values[fieldRepeat] = string(t.Repeat)
	return ms
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) currentValue() string {
	return ms.values[ms.index]
}

func (ms *metaState) setCurrentValue(v string) {
	ms.values[ms.index] = v
}

type parsedMeta struct {
	title    string
	notes    string
	due      *time.Time
	priority task.Priority
	tags     []string
	repeat   task.Repeat
}

func (ms metaState) parse() (parsedMeta, error) {
	var p parsedMeta
	var err error
	p.title = strings.TrimSpace(ms.values[fieldTitle])
	if p.title == "" {
		return p, fmt.Errorf("title cannot be empty")
	}
	p.notes = ms.values[fieldNotes]
	if p.due, err = task.ParseDue(ms.values[fieldDue], time.Local); err != nil {
		return p, err
	}
	if p.priority, err = task.ParsePriority(ms.values[fieldPriority]); err != nil {
		return p, err
	}
	p.tags = task.ParseTags(ms.values[fieldTags])
	if p.repeat, err = task.ParseRepeat(ms.values[fieldRepeat]); err != nil {
		return p, err
	}
	return p, nil
}

func (m Model) startMetadataEdit(t *task.Task) (tea.Model, tea.Cmd) {
	m.meta = newMetaState(t)
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.mode = modeEdit
	if t == nil {
		m.status = "New task: tab to move, enter to save/next, esc to cancel"
	} else {
		m.status = "Edit task: tab to move, enter to save/next, esc to cancel"
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.meta == nil {
		m.mode = modeList
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.moveField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.meta.setCurrentValue(m.input.Value())
	m.meta.index = wrapIndex(m.meta.index+delta, len(metaFields()))
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.status = m.metaPrompt()
}

func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	p, err := m.meta.parse()
	if err != nil {
		m.status = fmt.Sprintf("invalid: %v", err)
		return m, nil
	}

	focus := m.meta.taskID
	if m.meta.taskID == "" {
		added, ok := m.store.Add(task.Draft{
			Title:    p.title,
			Notes:    p.notes,
			Due:      p.due,
			Priority: p.priority,
			Tags:     p.tags,
			Repeat:   p.repeat,
		})
		if !ok {
			m.status = "Title cannot be empty"
			return m, nil
		}
		focus = added.ID
		m.status = "Added task"
	} else {
		patch := task.Patch{
			Title:    &p.title,
			Notes:    &p.notes,
			Priority: &p.priority,
			Tags:     &p.tags,
			Repeat:   &p.repeat,
		}
		if p.due == nil {
			patch.ClearDue = true
		} else {
			patch.Due = p.due
		}
		if !m.store.Edit(m.meta.taskID, patch) {
			m.status = "Task no longer exists"
		} else {
			m.status = "Task saved"
		}
	}

	m.meta = nil
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.refresh()
	for i, t := range m.tasks {
		if t.ID == focus {
			m.cursor = i
			break
		}
	}
	return m, nil
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
