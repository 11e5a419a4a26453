package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/repository"
)

const tokenIssuer = "todomanager"

// UserStore is the user persistence LocalProvider needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// LocalProvider keeps accounts in PostgreSQL and signs HS256 tokens.
type LocalProvider struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewLocalProvider creates a LocalProvider. secret signs and verifies tokens.
func NewLocalProvider(users UserStore, secret string, ttl time.Duration, logger *slog.Logger) *LocalProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalProvider{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// CreateAccount registers a user whose username is the email address.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", ErrProvider, err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrUsernameExists) {
			return "", ErrDuplicateAccount
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	p.logger.Info("account_created", slog.String("uid", user.ID), slog.String("provider", "local"))
	return user.ID, nil
}

// IssueToken checks the password and signs a token for the account.
func (p *LocalProvider) IssueToken(ctx context.Context, email, password string) (*IssuedToken, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := p.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.DummyVerify(password)
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredential
	}

	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        ulid.Make().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", ErrProvider, err)
	}

	return &IssuedToken{Token: signed, UserID: user.ID, ExpiresAt: expiresAt.UTC()}, nil
}

// Verify validates a token issued by this provider.
func (p *LocalProvider) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidCredential
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || claims.Subject == "" {
		return nil, ErrInvalidCredential
	}

	return &Identity{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
