package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

// firebaseMinPassword is the shortest password Firebase accepts.
const firebaseMinPassword = 6

// firebaseAuth is the subset of *auth.Client used here.
type firebaseAuth interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseProvider delegates accounts and ID token checks to Firebase Authentication.
type FirebaseProvider struct {
	client firebaseAuth
	logger *slog.Logger

	isDuplicate func(error) bool
	isBadToken  func(error) bool
}

// NewFirebaseProvider wraps a Firebase auth client.
func NewFirebaseProvider(client firebaseAuth, logger *slog.Logger) *FirebaseProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FirebaseProvider{
		client:      client,
		logger:      logger,
		isDuplicate: auth.IsEmailAlreadyExists,
		isBadToken: func(err error) bool {
			return auth.IsIDTokenInvalid(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err)
		},
	}
}

// CreateAccount registers an email/password user.
func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if len(password) < firebaseMinPassword {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, firebaseMinPassword)
	}

	user, err := p.client.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if p.isDuplicate(err) {
			return "", ErrDuplicateAccount
		}
		return "", fmt.Errorf("%w: create user: %v", ErrProvider, err)
	}

	p.logger.Info("account_created", slog.String("uid", user.UID), slog.String("provider", "firebase"))
	return user.UID, nil
}

// Verify checks a Firebase ID token.
func (p *FirebaseProvider) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, ErrInvalidCredential
	}

	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if p.isBadToken(err) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: verify token: %v", ErrProvider, err)
	}

	return &Identity{
		UserID:    token.UID,
		ExpiresAt: time.Unix(token.Expires, 0),
	}, nil
}
