package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"ticklite/internal/config"
	"ticklite/internal/task"
	"ticklite/internal/view"
)

const completedPanelSize = 8

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	bannerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	priorityStyle = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tick-lite"))
	b.WriteString("  ")
	b.WriteString(faintStyle.Render(m.renderStats()))
	b.WriteString("\n")
	b.WriteString(m.renderViews())
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner))
		b.WriteString("\n\n")
	}

	heading := m.view.Title()
	if m.search != "" {
		heading += fmt.Sprintf(" (search: %q)", m.search)
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")
	if len(m.tasks) == 0 {
		b.WriteString(faintStyle.Render("No tasks here."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	switch m.mode {
	case modeEdit:
		b.WriteString(m.renderMetaBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.meta.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderMetadataPanel())
		b.WriteString("\n")
		b.WriteString(m.renderCompletedPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s view • %s add • %s edit • space toggle • %s snooze • %s priority • %s delete • %s search • %s clear all • %s quit",
		k.Up, k.Down, k.NextView, k.Add, k.Edit, k.Snooze, k.Priority, k.Delete, k.Search, k.ClearAll, k.Quit)
}

func (m Model) renderStats() string {
	st := m.store.Stats()
	return fmt.Sprintf("Total %d • Pending %d • Completed %d", st.Total, st.Pending, st.Completed)
}

func (m Model) renderViews() string {
	parts := make([]string, 0, len(view.Views()))
	for _, v := range view.Views() {
		label := v.Title()
		if v == m.view {
			label = activeStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderTaskList() string {
	now := m.now()
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		title := t.Title
		if t.Completed {
			checkbox = "[x]"
			title = doneStyle.Render(title)
		}

		extras := make([]string, 0, 4)
		extras = append(extras, renderDue(t, now))
		extras = append(extras, renderPriority(t.Priority))
		if len(t.Tags) > 0 {
			extras = append(extras, "#"+strings.Join(t.Tags, " #"))
		}
		if t.Repeat != task.RepeatNone {
			extras = append(extras, "↻ "+string(t.Repeat))
		}

		b.WriteString(fmt.Sprintf("%s %s %s [%s]\n", cursor, checkbox, title, strings.Join(extras, " | ")))
	}
	return b.String()
}

func renderDue(t task.Task, now time.Time) string {
	if t.Due == nil {
		return "No due"
	}
	s := humanize.RelTime(*t.Due, now, "ago", "from now")
	if !t.Completed && t.Due.Before(now) {
		return overdueStyle.Render(s)
	}
	return s
}

func renderPriority(p task.Priority) string {
	if st, ok := priorityStyle[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	var b strings.Builder
	for i, name := range metaFields() {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		val := m.meta.values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-42s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m Model) renderMetadataPanel() string {
	t, ok := m.selected()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Notes     : %s\n", emptyPlaceholder(t.Notes)))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t)))
	b.WriteString(fmt.Sprintf("Due       : %s\n", emptyPlaceholder(task.FormatDue(t.Due))))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Tags      : %s\n", emptyPlaceholder(strings.Join(t.Tags, ", "))))
	b.WriteString(fmt.Sprintf("Repeat    : %s\n", t.Repeat))
	b.WriteString(fmt.Sprintf("ID        : %s\n", t.ID))
	return b.String()
}

func (m Model) renderCompletedPanel() string {
	var b strings.Builder
	b.WriteString("Completed\n")
	n := 0
	for _, t := range view.Classify(m.store.Snapshot(), view.Completed, m.now(), "") {
		if n == completedPanelSize {
			break
		}
		when := ""
		if t.CompletedAt != nil {
			when = humanize.RelTime(*t.CompletedAt, m.now(), "ago", "from now")
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", t.Title, faintStyle.Render(when)))
		n++
	}
	if n == 0 {
		b.WriteString(faintStyle.Render("  No completed tasks yet."))
		b.WriteString("\n")
	}
	return b.String()
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(t task.Task) string {
	if t.Completed {
		return "done " + task.FormatDue(t.CompletedAt)
	}
	return "pending"
}
