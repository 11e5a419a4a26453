package model

import (
	"slices"
	"time"
)

// Priority is the urgency of a relational todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priority values.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid checks if the priority is one of the known values.
func (p Priority) IsValid() bool {
	return slices.Contains(Priorities, p)
}

// MaxTitleLength bounds Task.Title.
const MaxTitleLength = 200

// Task is a todo stored in the relational database and owned by a
// session-authenticated user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	UserID      string     `json:"-"`
	CreatedDate time.Time  `json:"created_date"`
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskPatch carries a partial update for a Task.
// ClearDueDate removes the due date; it wins over DueDate.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
	Completed    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.Priority == nil && p.Completed == nil
}

// Apply writes the patch onto t. Owner, ID and CreatedDate are never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	UserID    string
	Completed *bool
}
