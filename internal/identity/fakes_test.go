package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/todomanager/todomanager/internal/cache"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/repository"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*model.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := strings.ToLower(user.Email)
	if _, ok := f.users[key]; ok {
		return repository.ErrEmailExists
	}
	u := *user
	f.users[key] = &u
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*cache.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*cache.Session)}
}

func (f *fakeSessions) CreateSession(_ context.Context, id string, s *cache.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id] = s
	return nil
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*cache.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeTokenCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{entries: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeTokenCache) GetVerifiedUID(_ context.Context, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[key]
}

func (f *fakeTokenCache) SetVerifiedUID(_ context.Context, key, uid string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl <= 0 {
		return nil
	}
	f.entries[key] = uid
	f.ttls[key] = ttl
	return nil
}

type countingVerifier struct {
	mu    sync.Mutex
	calls int
	id    *Identity
	err   error
}

func (c *countingVerifier) Verify(context.Context, string) (*Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	id := *c.id
	return &id, nil
}

type fakeFirebase struct {
	createErr error
	verifyErr error
	token     *auth.Token
	created   []string
}

func (f *fakeFirebase) CreateUser(_ context.Context, _ *auth.UserToCreate) (*auth.UserRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	uid := "fb-uid-1"
	f.created = append(f.created, uid)
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid}}, nil
}

func (f *fakeFirebase) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.token, nil
}
