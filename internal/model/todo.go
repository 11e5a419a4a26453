// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// Todo is a document-store todo item. Field names match the stored
// document and the JSON wire format.
type Todo struct {
	ID        string    `firestore:"-" json:"id"`
	Text      string    `firestore:"text" json:"text"`
	Completed bool      `firestore:"completed" json:"completed"`
	UserID    string    `firestore:"userId" json:"userId"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// TodoPatch carries a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply returns a copy of t with the patch applied.
// Owner, ID and CreatedAt are never touched.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// ValidText reports whether s is acceptable todo text.
func ValidText(s string) bool {
	return strings.TrimSpace(s) != ""
}
