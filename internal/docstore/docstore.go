// Package docstore persists document todos. Every operation is scoped to
// an owner: a todo that belongs to someone else behaves exactly like one
// that does not exist.
package docstore

import (
	"context"
	"errors"
	"strings"

	"github.com/todomanager/todomanager/internal/model"
)

// ErrTodoNotFound is returned when the todo is absent or owned by another user.
var ErrTodoNotFound = errors.New("todo not found")

// Store is the owner-scoped todo collection.
type Store interface {
	// List returns the owner's todos ordered by creation time, oldest first.
	List(ctx context.Context, owner string) ([]model.Todo, error)
	Get(ctx context.Context, owner, id string) (*model.Todo, error)
	// Create stores a new incomplete todo. The creation time is assigned by the store.
	Create(ctx context.Context, owner, text string) (*model.Todo, error)
	// Update applies patch and returns the todo as stored afterwards.
	Update(ctx context.Context, owner, id string, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, owner, id string) error
	Ping(ctx context.Context) error
}

// validID rejects ids that cannot name a single document.
func validID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}
