// Package memstore provides in-memory stand-ins for the PostgreSQL and
// Redis stores, for tests that exercise handlers end to end.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/todomanager/todomanager/internal/cache"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/repository"
)

// Tasks is an in-memory relational todo store.
type Tasks struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	order []string
}

// NewTasks creates an empty task store.
func NewTasks() *Tasks {
	return &Tasks{tasks: make(map[string]*model.Task)}
}

func (s *Tasks) CreateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *task
	s.tasks[task.ID] = &c
	s.order = append(s.order, task.ID)
	return nil
}

func (s *Tasks) GetTask(_ context.Context, userID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	c := *task
	return &c, nil
}

func (s *Tasks) ListTasks(_ context.Context, filter model.TaskFilter) ([]*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Task, 0)
	for _, id := range s.order {
		task, ok := s.tasks[id]
		if !ok || task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		c := *task
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedDate.Before(out[j].CreatedDate) })
	return out, nil
}

func (s *Tasks) UpdateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return repository.ErrTaskNotFound
	}
	c := *task
	c.CreatedDate = existing.CreatedDate
	s.tasks[task.ID] = &c
	return nil
}

func (s *Tasks) ToggleTask(_ context.Context, userID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return false, repository.ErrTaskNotFound
	}
	task.Completed = !task.Completed
	return task.Completed, nil
}

func (s *Tasks) DeleteTask(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// Users is an in-memory user store with case-insensitive unique
// usernames and emails.
type Users struct {
	mu    sync.Mutex
	users map[string]*model.User
}

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[string]*model.User)}
}

func (s *Users) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Username)
	if _, ok := s.users[key]; ok {
		return repository.ErrUsernameExists
	}
	if user.Email != "" {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return repository.ErrEmailExists
			}
		}
	}
	c := *user
	s.users[key] = &c
	return nil
}

func (s *Users) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *Users) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Users) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// Sessions is an in-memory session store. TTLs are recorded but not enforced.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]cache.Session
	TTLs     map[string]time.Duration
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]cache.Session), TTLs: make(map[string]time.Duration)}
}

func (s *Sessions) CreateSession(_ context.Context, id string, session *cache.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = *session
	s.TTLs[id] = ttl
	return nil
}

func (s *Sessions) GetSession(_ context.Context, id string) (*cache.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	return &session, nil
}

func (s *Sessions) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.TTLs, id)
	return nil
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
