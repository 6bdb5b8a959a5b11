package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/principal"
	"github.com/freebsdly/ops-console/pkg/tabs"
)

// ErrNoSession is returned when a token resolves to no live session.
var ErrNoSession = errors.New("no active session")

// DefaultTTL bounds session lifetime when Options.TTL is zero.
const DefaultTTL = 12 * time.Hour

// Session is one authenticated console session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Options configures a Manager.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

// Manager issues bearer tokens, resolves them to sessions and tears
// sessions down on logout. Logout also drops the user's cached principal
// snapshot and persisted tab state so the next login starts clean.
type Manager struct {
	mu        sync.Mutex
	generator *TokenGenerator
	sessions  map[string]*Session // keyed by token hash

	principals principal.Provider
	tabStore   tabs.Store
	logger     *observability.Logger

	ttl time.Duration
	now func() time.Time
}

// NewManager creates a session manager. principals and tabStore may be nil
// when logout cleanup is handled elsewhere.
func NewManager(principals principal.Provider, tabStore tabs.Store,
	logger *observability.Logger, opts Options) *Manager {

	m := &Manager{
		generator:  NewTokenGenerator(),
		sessions:   make(map[string]*Session),
		principals: principals,
		tabStore:   tabStore,
		logger:     logger,
		ttl:        opts.TTL,
		now:        opts.Now,
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Login creates a session for the user and returns it with the bearer
// token. The token is returned once and only its hash is retained.
func (m *Manager) Login(_ context.Context, userID string) (*Session, string, error) {
	token, tokenHash, err := m.generator.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		LastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[tokenHash] = sess
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.WithField("user_id", userID).WithField("session_id", sess.ID).
			Info("session created")
	}
	return sess, token, nil
}

// Resolve maps a bearer token to its live session, updating LastSeen.
// Expired sessions are removed and reported as ErrNoSession.
func (m *Manager) Resolve(_ context.Context, token string) (*Session, error) {
	if err := m.generator.ValidateFormat(token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	tokenHash := m.generator.Hash(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[tokenHash]
	if !ok {
		return nil, ErrNoSession
	}
	now := m.now()
	if now.After(sess.ExpiresAt) {
		delete(m.sessions, tokenHash)
		return nil, ErrNoSession
	}
	sess.LastSeen = now

	copied := *sess
	return &copied, nil
}

// Logout ends the session for the token and clears the user's cached
// principal and persisted tabs. An unknown token is not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if err := m.generator.ValidateFormat(token); err != nil {
		return nil
	}
	tokenHash := m.generator.Hash(token)

	m.mu.Lock()
	sess, ok := m.sessions[tokenHash]
	if ok {
		delete(m.sessions, tokenHash)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if m.principals != nil {
		m.principals.Invalidate(sess.UserID)
	}
	if m.tabStore != nil {
		if err := m.tabStore.Clear(ctx, sess.UserID); err != nil {
			return fmt.Errorf("failed to clear tab state: %w", err)
		}
	}
	if m.logger != nil {
		m.logger.WithField("user_id", sess.UserID).WithField("session_id", sess.ID).
			Info("session ended")
	}
	return nil
}

// ActiveCount reports how many unexpired sessions exist.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for hash, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			delete(m.sessions, hash)
			continue
		}
		n++
	}
	return n
}
