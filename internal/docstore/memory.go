package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/todomanager/todomanager/internal/model"
)

type memoryRecord struct {
	todo model.Todo
	seq  uint64
}

// MemoryStore keeps todos in process memory. Data is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	todos map[string]memoryRecord
	seq   uint64
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos: make(map[string]memoryRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the owner's todos, oldest first.
func (s *MemoryStore) List(_ context.Context, owner string) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]memoryRecord, 0)
	for _, rec := range s.todos {
		if rec.todo.UserID == owner {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
			return a.todo.CreatedAt.Before(b.todo.CreatedAt)
		}
		return a.seq < b.seq
	})

	todos := make([]model.Todo, len(records))
	for i, rec := range records {
		todos[i] = rec.todo
	}
	return todos, nil
}

// Get returns one of the owner's todos.
func (s *MemoryStore) Get(_ context.Context, owner, id string) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.todos[id]
	if !ok || rec.todo.UserID != owner {
		return nil, ErrTodoNotFound
	}
	todo := rec.todo
	return &todo, nil
}

// Create stores a new todo for owner.
func (s *MemoryStore) Create(_ context.Context, owner, text string) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	todo := model.Todo{
		ID:        ulid.Make().String(),
		Text:      text,
		Completed: false,
		UserID:    owner,
		CreatedAt: s.now(),
	}
	s.todos[todo.ID] = memoryRecord{todo: todo, seq: s.seq}
	return &todo, nil
}

// Update applies patch to one of the owner's todos.
func (s *MemoryStore) Update(_ context.Context, owner, id string, patch model.TodoPatch) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.todos[id]
	if !ok || rec.todo.UserID != owner {
		return nil, ErrTodoNotFound
	}
	rec.todo = patch.Apply(rec.todo)
	s.todos[id] = rec

	todo := rec.todo
	return &todo, nil
}

// Delete removes one of the owner's todos.
func (s *MemoryStore) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.todos[id]
	if !ok || rec.todo.UserID != owner {
		return ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
