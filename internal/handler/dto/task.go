package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/todomanager/todomanager/internal/model"
)

// NullableTime tells an absent field from an explicit null.
type NullableTime struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// TaskRequest is the body of task writes under /rest/todos/.
type TaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     NullableTime    `json:"due_date"`
	Priority    *model.Priority `json:"priority"`
	Completed   *bool           `json:"completed"`
}

// Patch converts the request into a partial update.
func (r *TaskRequest) Patch() model.TaskPatch {
	patch := model.TaskPatch{
		Title:     r.Title,
		Priority:  r.Priority,
		Completed: r.Completed,
	}
	if r.Description != nil {
		patch.Description = r.Description
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = r.DueDate.Value
		}
	}
	return patch
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	Priority    model.Priority `json:"priority"`
	Completed   bool           `json:"completed"`
	CreatedDate time.Time      `json:"created_date"`
	IsOverdue   bool           `json:"is_overdue"`
}

// ToTaskResponse converts a Task model to its DTO.
func ToTaskResponse(task *model.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Completed:   task.Completed,
		CreatedDate: task.CreatedDate,
		IsOverdue:   task.IsOverdue(now),
	}
}

// ToTaskListResponse converts tasks to DTOs, never returning nil.
func ToTaskListResponse(tasks []*model.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskResponse(task, now)
	}
	return out
}

// ToggleResponse is returned by toggle_complete.
type ToggleResponse struct {
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}
