package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/repository"
)

// TaskStore is the relational todo persistence TaskService needs.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	ToggleTask(ctx context.Context, userID, id string) (bool, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// TaskService handles relational todo business logic.
type TaskService struct {
	store   TaskStore
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, recorder metrics.Recorder, logger *slog.Logger) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: store, metrics: recorder, logger: logger, now: time.Now}
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    model.Priority
	Completed   bool
}

// List returns the user's tasks, oldest first. A non-nil completed
// narrows the listing to finished or pending tasks.
func (s *TaskService) List(ctx context.Context, userID string, completed *bool) ([]*model.Task, error) {
	defer s.observe(time.Now())

	return s.store.ListTasks(ctx, model.TaskFilter{UserID: userID, Completed: completed})
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	defer s.observe(time.Now())

	task, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return task, nil
}

// Create adds a task for userID.
func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*model.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		ID:          ulid.Make().String(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    priority,
		Completed:   input.Completed,
		UserID:      userID,
		CreatedDate: s.now().UTC(),
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	defer s.observe(time.Now())

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()
	s.logger.Info("task_created", slog.String("task_id", task.ID), slog.String("user_id", userID))
	return task, nil
}

// Update applies patch to one of the user's tasks.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch model.TaskPatch) (*model.Task, error) {
	defer s.observe(time.Now())

	task, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}

	patch.Apply(task)
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, mapTaskError(err)
	}

	s.metrics.IncTaskUpdated()
	return task, nil
}

// Toggle flips the completed flag and returns the new value.
func (s *TaskService) Toggle(ctx context.Context, userID, id string) (bool, error) {
	defer s.observe(time.Now())

	completed, err := s.store.ToggleTask(ctx, userID, id)
	if err != nil {
		return false, mapTaskError(err)
	}

	s.metrics.IncTaskUpdated()
	return completed, nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	defer s.observe(time.Now())

	if err := s.store.DeleteTask(ctx, userID, id); err != nil {
		return mapTaskError(err)
	}

	s.metrics.IncTaskDeleted()
	s.logger.Info("task_deleted", slog.String("task_id", id), slog.String("user_id", userID))
	return nil
}

func (s *TaskService) observe(start time.Time) {
	s.metrics.ObserveStoreDuration(time.Since(start))
}

func validateTask(task *model.Task) error {
	if task.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(task.Title) > model.MaxTitleLength {
		return ErrTitleTooLong
	}
	if !task.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

func mapTaskError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repository.ErrInvalidTask):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
