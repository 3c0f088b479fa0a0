package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// SessionObserver is called after every session state change, outside any lock.
type SessionObserver func(prev, next model.SessionState)

// SessionManager owns the authentication state derived from a CredentialStore.
// The credential itself stays in the store; the manager only tracks whether
// one is held. State reads are lock-protected and mutations are serialized so
// concurrent invalidations collapse into a single transition.
type SessionManager struct {
	store driven.CredentialStore

	// writeMu serializes store mutations with their state transition.
	writeMu sync.Mutex

	mu        sync.RWMutex
	state     model.SessionState
	observers []SessionObserver

	bootOnce sync.Once
	bootErr  error
}

// NewSessionManager creates a manager in the Bootstrapping state.
func NewSessionManager(store driven.CredentialStore) *SessionManager {
	return &SessionManager{
		store: store,
		state: model.SessionBootstrapping,
	}
}

// Subscribe registers fn to be called on every state change.
func (m *SessionManager) Subscribe(fn SessionObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// State returns the current state.
func (m *SessionManager) State() model.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Session returns the boolean view of the current state.
func (m *SessionManager) Session() model.Session {
	return m.State().Session()
}

// Token returns the stored credential, or "" when none is held.
func (m *SessionManager) Token(ctx context.Context) (string, error) {
	token, err := m.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return token, nil
}

// Bootstrap reads the credential store once and leaves the Bootstrapping
// state. Later calls return the first call's error without reading again.
// A store failure leaves the session Unauthenticated. If Login or Logout ran
// first, their state stands.
func (m *SessionManager) Bootstrap(ctx context.Context) error {
	m.bootOnce.Do(func() {
		m.writeMu.Lock()
		defer m.writeMu.Unlock()

		next := model.SessionUnauthenticated
		token, err := m.store.Get(ctx)
		switch {
		case err != nil:
			m.bootErr = fmt.Errorf("bootstrap session: %w", err)
		case token != "":
			next = model.SessionAuthenticated
		}

		m.mu.Lock()
		if m.state != model.SessionBootstrapping {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		m.transition(next)
		slog.Debug("session bootstrapped", "state", next)
	})
	return m.bootErr
}

// Login persists token and moves to Authenticated regardless of the current
// state. It makes no network call; callers invoke it after authentication
// succeeded. If the store write fails the state is unchanged.
func (m *SessionManager) Login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("login: %w", driven.ErrInvalidLoginResponse)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Set(ctx, token); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	m.transition(model.SessionAuthenticated)
	return nil
}

// Logout clears the credential and moves to Unauthenticated. The state
// changes even if the store fails to clear; the error is still returned.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.store.Clear(ctx)
	m.transition(model.SessionUnauthenticated)
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Invalidate handles a server rejection of the credential rejected. If the
// store already holds a different credential (a login happened while the
// rejected request was in flight) nothing changes. Otherwise the credential is
// cleared and the session becomes Unauthenticated. The boolean reports whether
// this call performed the transition, so concurrent rejections of the same
// credential yield exactly one true.
func (m *SessionManager) Invalidate(ctx context.Context, rejected string) (bool, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	current, err := m.store.Get(ctx)
	if err == nil && current != "" && current != rejected {
		slog.Debug("ignoring rejection of superseded credential")
		return false, nil
	}

	clearErr := m.store.Clear(ctx)
	changed := m.transition(model.SessionUnauthenticated)
	if clearErr != nil {
		return changed, fmt.Errorf("clear credential: %w", clearErr)
	}
	return changed, nil
}

// transition sets the state and notifies observers if it changed.
// Callers hold writeMu.
func (m *SessionManager) transition(next model.SessionState) bool {
	m.mu.Lock()
	prev := m.state
	m.state = next
	observers := append([]SessionObserver(nil), m.observers...)
	m.mu.Unlock()

	if prev == next {
		return false
	}
	for _, fn := range observers {
		fn(prev, next)
	}
	return true
}
