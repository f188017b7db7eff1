package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ticklite/internal/task"
)

const shortIDLen = 8

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
	Now    func() time.Time
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w, Now: time.Now}
}

// TaskView is the JSON shape of a task.
type TaskView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags,omitempty"`
	Repeat      string     `json:"repeat"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toView(t task.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Notes:       t.Notes,
		Due:         t.Due,
		Priority:    string(t.Priority),
		Tags:        t.Tags,
		Repeat:      string(t.Repeat),
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

// Tasks prints tasks as a list (text) or an array (json).
func (f *OutputFormatter) Tasks(tasks []task.Task) error {
	if f.Format == "json" {
		views := make([]TaskView, 0, len(tasks))
		for _, t := range tasks {
			views = append(views, toView(t))
		}
		return json.NewEncoder(f.Writer).Encode(views)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(f.Writer, "No tasks.")
		return nil
	}
	now := f.Now()
	for _, t := range tasks {
		fmt.Fprintln(f.Writer, f.line(t, now))
	}
	fmt.Fprintf(f.Writer, "%s\n", pluralTasks(len(tasks)))
	return nil
}

// Task prints a single task after a mutation, prefixed with what happened.
func (f *OutputFormatter) Task(action string, t task.Task) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(struct {
			Action string   `json:"action"`
			Task   TaskView `json:"task"`
		}{action, toView(t)})
	}
	fmt.Fprintf(f.Writer, "%s: %s\n", action, f.line(t, f.Now()))
	return nil
}

// Message prints a plain status line.
func (f *OutputFormatter) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(map[string]string{"status": "ok", "message": msg})
	}
	fmt.Fprintln(f.Writer, msg)
	return nil
}

func (f *OutputFormatter) line(t task.Task, now time.Time) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	extras := []string{dueLabel(t.Due, now), string(t.Priority)}
	if len(t.Tags) > 0 {
		extras = append(extras, "#"+strings.Join(t.Tags, " #"))
	}
	if t.Repeat != task.RepeatNone && t.Repeat != "" {
		extras = append(extras, "repeats "+string(t.Repeat))
	}
	return fmt.Sprintf("%-*s %s %s (%s)", shortIDLen, shortID(t.ID), box, t.Title, strings.Join(extras, ", "))
}

func dueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return "no due date"
	}
	return "due " + humanize.RelTime(*due, now, "ago", "from now")
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func pluralTasks(n int) string {
	if n == 1 {
		return "1 task"
	}
	return humanize.Comma(int64(n)) + " tasks"
}
