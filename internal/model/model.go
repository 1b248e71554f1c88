package model

import "time"

// DefaultPriority is the priority assumed when a to-do carries none.
const DefaultPriority int8 = 11

// Task is a to-do item pulled from a remote calendar after filtering.
// UIDs are not unique across feeds; duplicates are kept as separate tasks.
type Task struct {
	UID string

	// Stamp is the DTSTAMP recorded by the source; display only.
	Stamp time.Time

	Summary string

	// Starts, if set, keeps the task ineligible until that instant.
	Starts *time.Time
	// Due, if set and in the past, escalates the task's weight.
	Due *time.Time

	// Priority follows iCalendar semantics: 1 is most urgent.
	Priority int8
}

// Overdue reports whether the task has a due date strictly before now.
func (t Task) Overdue(now time.Time) bool {
	return t.Due != nil && t.Due.Before(now)
}

// Started reports whether the task is eligible at now.
func (t Task) Started(now time.Time) bool {
	return t.Starts == nil || t.Starts.Before(now)
}
