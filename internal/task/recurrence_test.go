package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDueWithoutAnchorOrRule(t *testing.T) {
	due := at("2026-03-10 09:00")
	assert.Nil(t, NextDue(nil, RepeatDaily))
	assert.Nil(t, NextDue(&due, RepeatNone))
	assert.Nil(t, NextDue(&due, Repeat("fortnightly")))
}

func TestNextDueStrictlyIncreases(t *testing.T) {
	starts := []time.Time{
		at("2026-01-31 23:59"),
		at("2024-02-29 00:00"),
		at("2026-12-31 12:00"),
		at("2026-06-15 06:45"),
	}
	for _, r := range Repeats() {
		if r == RepeatNone {
			continue
		}
		for _, s := range starts {
			next := NextDue(&s, r)
			require.NotNil(t, next, "%s from %s", r, s)
			assert.True(t, next.After(s), "%s from %s gave %s", r, s, next)
		}
	}
}

func TestNextDueMonthlyComposes(t *testing.T) {
	start := at("2026-01-15 09:00")
	once := NextDue(&start, RepeatMonthly)
	twice := NextDue(once, RepeatMonthly)
	require.NotNil(t, twice)
	assert.Equal(t, at("2026-03-15 09:00"), *twice)
	assert.Equal(t, start.AddDate(0, 2, 0), *twice)
}

func TestNextDuePerRule(t *testing.T) {
	start := at("2026-03-10 09:00")
	assert.Equal(t, at("2026-03-11 09:00"), *NextDue(&start, RepeatDaily))
	assert.Equal(t, at("2026-03-17 09:00"), *NextDue(&start, RepeatWeekly))
	assert.Equal(t, at("2026-04-10 09:00"), *NextDue(&start, RepeatMonthly))
	assert.Equal(t, at("2027-03-10 09:00"), *NextDue(&start, RepeatYearly))
}

func TestRecur(t *testing.T) {
	due := at("2026-03-10 09:00")
	done := at("2026-03-10 10:00")
	orig := Task{
		ID:          "orig",
		Title:       "Pay rent",
		Notes:       "cash",
		Due:         &due,
		Priority:    PriorityHigh,
		Tags:        []string{"rent", "monthly"},
		Completed:   true,
		CompletedAt: &done,
		Repeat:      RepeatMonthly,
		CreatedAt:   at("2026-03-01 08:00"),
	}

	now := at("2026-03-10 10:00")
	sib, ok := orig.Recur("next", now)
	require.True(t, ok)
	assert.Equal(t, "next", sib.ID)
	assert.Equal(t, at("2026-04-10 09:00"), *sib.Due)
	assert.False(t, sib.Completed)
	assert.Nil(t, sib.CompletedAt)
	assert.Equal(t, now, sib.CreatedAt)
	assert.Equal(t, orig.Title, sib.Title)
	assert.Equal(t, orig.Tags, sib.Tags)
	assert.Equal(t, RepeatMonthly, sib.Repeat)

	orig.Due = nil
	_, ok = orig.Recur("x", now)
	assert.False(t, ok)
}
