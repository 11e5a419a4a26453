// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/todomanager/todomanager/internal/model"
)

// Service errors.
var (
	ErrInvalidInput = errors.New("invalid input")

	ErrTextRequired     = fmt.Errorf("%w: text is required", ErrInvalidInput)
	ErrNoFieldsToUpdate = fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	ErrTitleRequired    = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrTitleTooLong     = fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, model.MaxTitleLength)
	ErrInvalidPriority  = fmt.Errorf("%w: priority must be one of low, medium, high", ErrInvalidInput)
	ErrUsernameRequired = fmt.Errorf("%w: username is required", ErrInvalidInput)
	ErrUsernameTooLong  = fmt.Errorf("%w: username must be at most %d characters", ErrInvalidInput, maxUsernameLength)

	ErrTodoNotFound = errors.New("todo not found")
	ErrTaskNotFound = errors.New("task not found")

	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidLogin    = errors.New("invalid username or password")
	ErrPasswordInvalid = errors.New("password rejected")
)
