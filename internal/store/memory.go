package store

import (
	"context"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/user"
)

// MemoryStore is a concurrency-safe in-memory user repository.
type MemoryStore struct {
	mu sync.RWMutex

	// key: user ID
	users map[string]*user.User

	// key: normalised email, value: user ID
	emails map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*user.User),
		emails: make(map[string]string),
	}
}

// Create inserts u. The email must not be registered yet.
func (s *MemoryStore) Create(_ context.Context, u *user.User) error {
	key := emailKey(u.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[key]; taken {
		return user.ErrEmailTaken
	}
	s.users[u.ID] = u.Clone()
	s.emails[key] = u.ID
	return nil
}

// Load returns a copy of the user with the given ID.
func (s *MemoryStore) Load(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u.Clone(), nil
}

// LoadByEmail returns a copy of the user registered with email.
func (s *MemoryStore) LoadByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return s.users[id].Clone(), nil
}

// Save replaces the stored user wholesale.
func (s *MemoryStore) Save(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	if prevKey, key := emailKey(prev.Email), emailKey(u.Email); prevKey != key {
		if _, taken := s.emails[key]; taken {
			return user.ErrEmailTaken
		}
		delete(s.emails, prevKey)
		s.emails[key] = u.ID
	}
	s.users[u.ID] = u.Clone()
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
