package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/todomanager/todomanager/internal/model"
)

// runStoreSuite exercises the owner-scoping contract every Store must honor.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create then get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "u1", "buy milk")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected an id")
		}

		got, err := s.Get(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.UserID != "u1" || got.Text != "buy milk" || got.Completed {
			t.Errorf("unexpected todo: %+v", got)
		}
		if got.CreatedAt.IsZero() {
			t.Error("createdAt should be set")
		}
	})

	t.Run("foreign owner sees not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "alice", "secret")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if _, err := s.Get(ctx, "bob", created.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("Get: expected ErrTodoNotFound, got %v", err)
		}
		done := true
		if _, err := s.Update(ctx, "bob", created.ID, model.TodoPatch{Completed: &done}); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("Update: expected ErrTodoNotFound, got %v", err)
		}
		if err := s.Delete(ctx, "bob", created.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("Delete: expected ErrTodoNotFound, got %v", err)
		}

		got, err := s.Get(ctx, "alice", created.ID)
		if err != nil {
			t.Fatalf("owner Get: %v", err)
		}
		if got.Completed {
			t.Error("foreign update leaked through")
		}
	})

	t.Run("update keeps owner and createdAt", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "u1", "buy milk")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		before, err := s.Get(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}

		done := true
		updated, err := s.Update(ctx, "u1", created.ID, model.TodoPatch{Completed: &done})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if !updated.Completed || updated.Text != "buy milk" {
			t.Errorf("unexpected update result: %+v", updated)
		}

		after, err := s.Get(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if after.UserID != "u1" || !after.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("immutable fields changed: before %+v after %+v", before, after)
		}
		if !after.Completed || after.Text != "buy milk" {
			t.Errorf("stored todo not updated: %+v", after)
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "u1", "temp")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, "u1", created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "u1", created.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("expected ErrTodoNotFound, got %v", err)
		}
		if err := s.Delete(ctx, "u1", created.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("second delete: expected ErrTodoNotFound, got %v", err)
		}
	})

	t.Run("list is owner scoped and ordered", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		texts := []string{"one", "two", "three"}
		for _, text := range texts {
			if _, err := s.Create(ctx, "lister", text); err != nil {
				t.Fatalf("Create %s: %v", text, err)
			}
		}
		if _, err := s.Create(ctx, "someone-else", "hidden"); err != nil {
			t.Fatalf("Create: %v", err)
		}

		todos, err := s.List(ctx, "lister")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(todos) != len(texts) {
			t.Fatalf("len = %d, want %d", len(todos), len(texts))
		}
		for i, todo := range todos {
			if todo.Text != texts[i] {
				t.Errorf("position %d: %q, want %q", i, todo.Text, texts[i])
			}
			if todo.UserID != "lister" {
				t.Errorf("foreign todo in list: %+v", todo)
			}
			if i > 0 && todo.CreatedAt.Before(todos[i-1].CreatedAt) {
				t.Errorf("list not ascending at %d", i)
			}
		}

		empty, err := s.List(ctx, "nobody")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", empty)
		}
	})

	t.Run("invalid ids are not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, id := range []string{"missing", "a/b"} {
			if _, err := s.Get(ctx, "u1", id); !errors.Is(err, ErrTodoNotFound) {
				t.Errorf("Get(%q): expected ErrTodoNotFound, got %v", id, err)
			}
		}
	})
}
