package store

import (
	"time"

	"ticklite/internal/task"
)

// ExampleSeed returns the drafts loaded on first launch.
func ExampleSeed(now time.Time) []task.Draft {
	rentDue := now.Add(24 * time.Hour)
	sinkDue := now.Add(2 * 24 * time.Hour)
	return []task.Draft{
		{
			Title:    "Pay rent",
			Notes:    "Collect cash from tenant",
			Due:      &rentDue,
			Priority: task.PriorityHigh,
			Tags:     []string{"rent", "monthly"},
			Repeat:   task.RepeatMonthly,
		},
		{
			Title:    "Fix sink in Apt 204",
			Notes:    "Call plumber",
			Due:      &sinkDue,
			Priority: task.PriorityMedium,
			Tags:     []string{"maintenance"},
			Repeat:   task.RepeatNone,
		},
	}
}
