// Package session holds the API credential for the lifetime of a login.
//
// A session starts when a credential is accepted by the remote service, is
// resumed from persistent storage on later runs, and ends only on explicit
// logout. It is never refreshed implicitly.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valpere/promptg/internal/enhancer"
)

var (
	// ErrCredentialRejected means the remote service refused the credential
	// (or could not be reached to check it).
	ErrCredentialRejected = errors.New("credential rejected")
	// ErrNoSession means no credential is held.
	ErrNoSession = errors.New("no active session")
	// ErrEmptyCredential means a blank credential was supplied.
	ErrEmptyCredential = errors.New("credential is empty")
)

// CredentialStore persists the credential between runs.
type CredentialStore interface {
	SaveCredential(ctx context.Context, credential string) error
	LoadCredential(ctx context.Context) (string, bool, error)
	ClearCredential(ctx context.Context) error
}

// Session is safe for concurrent use.
type Session struct {
	validator enhancer.CredentialValidator
	store     CredentialStore

	mu         sync.RWMutex
	credential string
	startedAt  time.Time
}

// New creates an inactive session. store may be nil, in which case the
// credential lives only in memory.
func New(validator enhancer.CredentialValidator, store CredentialStore) *Session {
	return &Session{validator: validator, store: store}
}

// Start validates credential against the remote service and, when accepted,
// makes it the active credential and persists it.
func (s *Session) Start(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}

	if !s.validator.ValidateCredential(ctx, credential) {
		return ErrCredentialRejected
	}

	if s.store != nil {
		if err := s.store.SaveCredential(ctx, credential); err != nil {
			return fmt.Errorf("failed to persist credential: %w", err)
		}
	}

	s.mu.Lock()
	s.credential = credential
	s.startedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Resume loads a previously persisted credential without re-validating it.
// It reports whether a session is now active.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.store == nil {
		return s.Active(), nil
	}

	credential, ok, err := s.store.LoadCredential(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	if !ok || strings.TrimSpace(credential) == "" {
		return s.Active(), nil
	}

	s.mu.Lock()
	s.credential = strings.TrimSpace(credential)
	s.startedAt = time.Now()
	s.mu.Unlock()
	return true, nil
}

// Adopt makes credential active for this process only, without validation or
// persistence. Used for credentials supplied by the environment.
func (s *Session) Adopt(credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}
	s.mu.Lock()
	s.credential = credential
	s.startedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Credential returns the active credential.
func (s *Session) Credential() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" {
		return "", ErrNoSession
	}
	return s.credential, nil
}

// Active reports whether a credential is held.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// StartedAt returns when the current session began; zero when inactive.
func (s *Session) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// Logout forgets the credential in memory and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.credential = ""
	s.startedAt = time.Time{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearCredential(ctx); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}
	}
	return nil
}
