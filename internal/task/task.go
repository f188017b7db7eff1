package task

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority is case-insensitive; an empty value yields Medium.
func ParsePriority(v string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority %q", v)
}

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

func Repeats() []Repeat {
	return []Repeat{RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}
}

// ParseRepeat is case-insensitive; an empty value yields none.
func ParseRepeat(v string) (Repeat, error) {
	r := Repeat(strings.ToLower(strings.TrimSpace(v)))
	if r == "" {
		return RepeatNone, nil
	}
	for _, known := range Repeats() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown repeat rule %q", v)
}

type Task struct {
	ID          string
	Title       string
	Notes       string
	Due         *time.Time
	Priority    Priority
	Tags        []string
	Completed   bool
	CompletedAt *time.Time
	Repeat      Repeat
	CreatedAt   time.Time
}

// Draft is the input for creating a task.
type Draft struct {
	Title    string
	Notes    string
	Due      *time.Time
	Priority Priority
	Tags     []string
	Repeat   Repeat
}

// Patch represents a partial update.
// nil pointer => "no change"; ClearDue removes the due date.
type Patch struct {
	Title     *string
	Notes     *string
	Due       *time.Time
	ClearDue  bool
	Priority  *Priority
	Tags      *[]string
	Repeat    *Repeat
	Completed *bool
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Notes == nil && p.Due == nil && !p.ClearDue &&
		p.Priority == nil && p.Tags == nil && p.Repeat == nil && p.Completed == nil
}

// Apply merges p into t. ID and CreatedAt are never touched. now stamps
// CompletedAt when the patch completes an open task.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			t.Title = title
		}
	}
	if p.Notes != nil {
		t.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.ClearDue {
		t.Due = nil
	} else if p.Due != nil {
		t.Due = timePtr(*p.Due)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Repeat != nil {
		t.Repeat = *p.Repeat
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		switch {
		case !t.Completed:
			t.CompletedAt = nil
		case t.CompletedAt == nil:
			t.CompletedAt = timePtr(now)
		}
	}
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.Due != nil {
		c.Due = timePtr(*t.Due)
	}
	if t.CompletedAt != nil {
		c.CompletedAt = timePtr(*t.CompletedAt)
	}
	c.Tags = append([]string{}, t.Tags...)
	return c
}

// ParseTags splits a comma separated list, trimming entries and dropping
// empty ones. Duplicates are kept.
func ParseTags(v string) []string {
	tags := []string{}
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

var dueLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDue parses a due date in one of the accepted layouts, interpreting
// zone-less input in loc. An empty value yields nil.
func ParseDue(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or YYYY-MM-DD HH:MM)", v)
}

func FormatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func timePtr(t time.Time) *time.Time {
	return &t
}
