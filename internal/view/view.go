package view

import (
	"fmt"
	"strings"
	"time"

	"ticklite/internal/task"
)

type View string

const (
	All       View = "all"
	Inbox     View = "inbox"
	Today     View = "today"
	Upcoming  View = "upcoming"
	Completed View = "completed"
)

// Views lists the views in navigation order.
func Views() []View {
	return []View{All, Inbox, Today, Upcoming, Completed}
}

func ParseView(v string) (View, error) {
	want := View(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Views() {
		if want == known {
			return want, nil
		}
	}
	return "", fmt.Errorf("unknown view %q (want one of %v)", v, Views())
}

// Title is the heading shown for the view.
func (v View) Title() string {
	if v == All {
		return "All tasks"
	}
	s := string(v)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Next returns the view after v in navigation order, wrapping around.
func (v View) Next() View {
	views := Views()
	for i, known := range views {
		if known == v {
			return views[(i+1)%len(views)]
		}
	}
	return views[0]
}

// Classify returns the tasks that belong in view v at instant now, after
// applying the case-insensitive search text. Input order is preserved and
// tasks is never modified.
func Classify(tasks []task.Task, v View, now time.Time, search string) []task.Task {
	needle := strings.ToLower(search)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" && !strings.Contains(haystack(t), needle) {
			continue
		}
		if !v.includes(t, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (v View) includes(t task.Task, now time.Time) bool {
	switch v {
	case Inbox:
		return t.Due == nil && !t.Completed
	case Today:
		return task.IsToday(t.Due, now) && !t.Completed
	case Upcoming:
		return t.Due != nil && task.IsFuture(*t.Due, now) && !t.Completed
	case Completed:
		return t.Completed
	default:
		return true
	}
}

func haystack(t task.Task) string {
	return strings.ToLower(t.Title + " " + t.Notes + " " + strings.Join(t.Tags, " "))
}
