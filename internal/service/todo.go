package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/todomanager/todomanager/internal/docstore"
	"github.com/todomanager/todomanager/internal/metrics"
	"github.com/todomanager/todomanager/internal/model"
)

// TodoService handles document todo business logic.
type TodoService struct {
	store   docstore.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewTodoService creates a new TodoService.
func NewTodoService(store docstore.Store, recorder metrics.Recorder, logger *slog.Logger) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{store: store, metrics: recorder, logger: logger}
}

// List returns the owner's todos, oldest first.
func (s *TodoService) List(ctx context.Context, owner string) ([]model.Todo, error) {
	defer s.observe(time.Now())

	todos, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Get returns one of the owner's todos.
func (s *TodoService) Get(ctx context.Context, owner, id string) (*model.Todo, error) {
	defer s.observe(time.Now())

	todo, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return todo, nil
}

// Create adds a todo for owner.
func (s *TodoService) Create(ctx context.Context, owner, text string) (*model.Todo, error) {
	if !model.ValidText(text) {
		return nil, ErrTextRequired
	}
	defer s.observe(time.Now())

	todo, err := s.store.Create(ctx, owner, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	s.logger.Info("todo_created", slog.String("todo_id", todo.ID), slog.String("user_id", owner))
	return todo, nil
}

// Update applies patch to one of the owner's todos.
func (s *TodoService) Update(ctx context.Context, owner, id string, patch model.TodoPatch) (*model.Todo, error) {
	defer s.observe(time.Now())

	// A missing or foreign todo is reported before any patch problem.
	if patch.IsEmpty() || (patch.Text != nil && !model.ValidText(*patch.Text)) {
		if _, err := s.store.Get(ctx, owner, id); err != nil {
			return nil, mapStoreError(err)
		}
		if patch.IsEmpty() {
			return nil, ErrNoFieldsToUpdate
		}
		return nil, ErrTextRequired
	}

	todo, err := s.store.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// Delete removes one of the owner's todos.
func (s *TodoService) Delete(ctx context.Context, owner, id string) error {
	defer s.observe(time.Now())

	if err := s.store.Delete(ctx, owner, id); err != nil {
		return mapStoreError(err)
	}

	s.metrics.IncTodoDeleted()
	s.logger.Info("todo_deleted", slog.String("todo_id", id), slog.String("user_id", owner))
	return nil
}

func (s *TodoService) observe(start time.Time) {
	s.metrics.ObserveStoreDuration(time.Since(start))
}

func mapStoreError(err error) error {
	if errors.Is(err, docstore.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return err
}
