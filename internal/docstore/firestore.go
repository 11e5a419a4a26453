package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/todomanager/todomanager/internal/model"
)

// Stored field names.
const (
	fieldText      = "text"
	fieldCompleted = "completed"
	fieldUserID    = "userId"
	fieldCreatedAt = "createdAt"
)

// FirestoreStore keeps todos in a Firestore collection.
// Listing requires a composite index on (userId, createdAt).
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a store over the named collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// List returns the owner's todos ordered by createdAt.
func (s *FirestoreStore) List(ctx context.Context, owner string) ([]model.Todo, error) {
	iter := s.col().
		Where(fieldUserID, "==", owner).
		OrderBy(fieldCreatedAt, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	todos := make([]model.Todo, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list todos: %w", err)
		}
		todo, err := decodeTodo(snap)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, nil
}

// Get reads one of the owner's todos.
func (s *FirestoreStore) Get(ctx context.Context, owner, id string) (*model.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}

	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return ownedTodo(snap, owner)
}

// Create adds a document with a server-assigned createdAt and reads it
// back so the caller sees the stored timestamp.
func (s *FirestoreStore) Create(ctx context.Context, owner, text string) (*model.Todo, error) {
	ref := s.col().NewDoc()
	_, err := ref.Create(ctx, map[string]any{
		fieldText:      text,
		fieldCompleted: false,
		fieldUserID:    owner,
		fieldCreatedAt: firestore.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read created todo: %w", err)
	}
	return decodeTodo(snap)
}

// Update checks ownership and writes the patched fields in one transaction.
func (s *FirestoreStore) Update(ctx context.Context, owner, id string, patch model.TodoPatch) (*model.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}

	ref := s.col().Doc(id)
	var updated *model.Todo
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := ownedTodo(snap, owner)
		if err != nil {
			return err
		}

		if err := tx.Update(ref, patchUpdates(patch)); err != nil {
			return err
		}

		next := patch.Apply(*current)
		updated = &next
		return nil
	})
	if err != nil {
		return nil, txError("update", err)
	}
	return updated, nil
}

// patchUpdates maps the set fields of patch to stored field paths.
func patchUpdates(patch model.TodoPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Text != nil {
		updates = append(updates, firestore.Update{Path: fieldText, Value: *patch.Text})
	}
	if patch.Completed != nil {
		updates = append(updates, firestore.Update{Path: fieldCompleted, Value: *patch.Completed})
	}
	return updates
}

// Delete checks ownership and removes the document in one transaction.
func (s *FirestoreStore) Delete(ctx context.Context, owner, id string) error {
	if !validID(id) {
		return ErrTodoNotFound
	}

	ref := s.col().Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if _, err := ownedTodo(snap, owner); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return txError("delete", err)
	}
	return nil
}

// Ping issues a one-document read against the collection.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.col().Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close releases the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func ownedTodo(snap *firestore.DocumentSnapshot, owner string) (*model.Todo, error) {
	todo, err := decodeTodo(snap)
	if err != nil {
		return nil, err
	}
	if todo.UserID != owner {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func decodeTodo(snap *firestore.DocumentSnapshot) (*model.Todo, error) {
	var todo model.Todo
	if err := snap.DataTo(&todo); err != nil {
		return nil, fmt.Errorf("failed to decode todo %s: %w", snap.Ref.ID, err)
	}
	todo.ID = snap.Ref.ID
	return &todo, nil
}

func txError(op string, err error) error {
	switch {
	case errors.Is(err, ErrTodoNotFound), status.Code(err) == codes.NotFound:
		return ErrTodoNotFound
	default:
		return fmt.Errorf("failed to %s todo: %w", op, err)
	}
}
