// Package auth holds the storefront session: the bearer token in durable
// storage and the current user in memory. Token issuance belongs to the
// auth backend; only attachment and lookup live here.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/storage"
)

const tokenKey = "token"

const roleAdmin = "ADMIN"

// anonymousUserID is the fallback identity used for cart and wishlist
// resources when nobody is logged in.
const anonymousUserID = 1

type Session struct {
	mu      sync.RWMutex
	storage storage.Store
	user    *domain.User
}

func NewSession(st storage.Store) *Session {
	return &Session{storage: st}
}

// Token returns the stored bearer token, or "" when anonymous. Absence is
// not an error.
func (s *Session) Token(ctx context.Context) (string, error) {
	data, err := s.storage.Get(ctx, tokenKey)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SetToken persists the token; an empty token removes the entry.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return s.storage.Delete(ctx, tokenKey)
	}
	return s.storage.Set(ctx, tokenKey, []byte(token))
}

func (s *Session) SetUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID <= 0 {
		s.user = nil
		return
	}
	u := user
	s.user = &u
}

// Clear drops both the user and the stored token.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.storage.Delete(ctx, tokenKey)
}

// User returns the current user and whether one is set.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// UserID resolves the identity used for remote resources, defaulting to the
// anonymous identity when nobody is logged in.
func (s *Session) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return anonymousUserID
	}
	return s.user.ID
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsAdmin reports whether the current role is restricted from purchasing.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && strings.EqualFold(s.user.Role, roleAdmin)
}
