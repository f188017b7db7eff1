package task

import "time"

// NextDue returns the next occurrence after due for rule r, or nil when
// there is no anchor or the rule does not repeat.
func NextDue(due *time.Time, r Repeat) *time.Time {
	if due == nil {
		return nil
	}
	u, ok := unitFor(r)
	if !ok {
		return nil
	}
	next := AddCalendarStep(*due, u)
	return &next
}

func unitFor(r Repeat) (Unit, bool) {
	switch r {
	case RepeatDaily:
		return Day, true
	case RepeatWeekly:
		return Week, true
	case RepeatMonthly:
		return Month, true
	case RepeatYearly:
		return Year, true
	}
	return 0, false
}

// Recur builds the open sibling that follows t. The caller supplies the new
// id and creation time. ok is false when t does not recur.
func (t Task) Recur(id string, now time.Time) (Task, bool) {
	next := NextDue(t.Due, t.Repeat)
	if next == nil {
		return Task{}, false
	}
	sibling := t.Clone()
	sibling.ID = id
	sibling.Due = next
	sibling.Completed = false
	sibling.CompletedAt = nil
	sibling.CreatedAt = now
	return sibling, true
}
