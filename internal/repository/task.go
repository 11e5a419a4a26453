package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/todomanager/todomanager/internal/model"
)

// Common errors for task repository operations.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUnknownOwner = errors.New("task owner does not exist")
	ErrInvalidTask  = errors.New("task violates a table constraint")
)

const taskColumns = `id, title, description, due_date, priority, completed, user_id, created_date`

// CreateTask inserts a new task.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO todos (id, title, description, due_date, priority, completed, user_id, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Completed,
		task.UserID,
		task.CreatedDate,
	)
	if err != nil {
		return taskWriteError("create", err)
	}
	return nil
}

// GetTask retrieves a task owned by userID. A task owned by someone else
// is reported as ErrTaskNotFound.
func (r *Repository) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasks returns the owner's tasks, oldest first.
func (r *Repository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM todos WHERE user_id = $1`
	args := []any{filter.UserID}

	if filter.Completed != nil {
		query += ` AND completed = $2`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY created_date ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask writes the mutable fields of task. The owner check is part of
// the statement, so a foreign task is never modified.
func (r *Repository) UpdateTask(ctx context.Context, task *model.Task) error {
	query := `
		UPDATE todos
		SET title = $3, description = $4, due_date = $5, priority = $6, completed = $7
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Completed,
	)
	if err != nil {
		return taskWriteError("update", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ToggleTask flips the completed flag and returns the new value.
func (r *Repository) ToggleTask(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE todos SET completed = NOT completed
		WHERE id = $1 AND user_id = $2
		RETURNING completed
	`

	var completed bool
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(&completed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("failed to toggle task: %w", err)
	}
	return completed, nil
}

// DeleteTask removes a task owned by userID.
func (r *Repository) DeleteTask(ctx context.Context, userID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Completed,
		&task.UserID,
		&task.CreatedDate,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func taskWriteError(op string, err error) error {
	switch {
	case isForeignKeyViolation(err):
		return ErrUnknownOwner
	case isCheckViolation(err):
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	default:
		return fmt.Errorf("failed to %s task: %w", op, err)
	}
}
