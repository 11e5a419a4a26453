package dto

// CreateTodoRequest is the body of POST /api/todos/.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the body of PUT and PATCH /api/todos/{id}/.
// Absent fields are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// TodoCreatedResponse acknowledges a new todo.
type TodoCreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
