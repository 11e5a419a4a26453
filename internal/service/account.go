package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/repository"
)

const maxUsernameLength = 150

// Letters, digits and @ . + - _
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+_-]+$`)

// UserStore is the user persistence AccountService needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// AccountService registers and authenticates local users for the
// session-based routes.
type AccountService struct {
	users  UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{users: users, logger: logger, now: time.Now}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a user with a hashed password.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case len(username) > maxUsernameLength:
		return nil, ErrUsernameTooLong
	case !usernameRegex.MatchString(username):
		return nil, fmt.Errorf("%w: username may contain only letters, digits and @.+-_", ErrInvalidInput)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
		}
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPasswordInvalid, err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	s.logger.Info("user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// Authenticate checks a username and password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.DummyVerify(password)
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, ErrInvalidLogin
	}
	if !ok {
		return nil, ErrInvalidLogin
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

// upgradeHash re-hashes a verified password with the current parameters.
// Failures are logged; the login itself already succeeded.
func (s *AccountService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("password_rehash_failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	user.PasswordHash = hash
	s.logger.Info("password_rehashed", slog.String("user_id", user.ID))
}
