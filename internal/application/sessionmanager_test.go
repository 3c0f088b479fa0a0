package application_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu       sync.Mutex
	token    string
	getErr   error
	setErr   error
	clearErr error
	gets     int
	clears   int
}

func (m *mockCredentialStore) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.token, nil
}

func (m *mockCredentialStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.token = token
	return nil
}

func (m *mockCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.token = ""
	return nil
}

func TestSessionManager_InitialStateIsLoading(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{})

	assert.Equal(t, model.SessionBootstrapping, mgr.State())
	assert.Equal(t, model.Session{IsAuthenticated: false, IsLoading: true}, mgr.Session())
}

func TestSessionManager_BootstrapWithStoredCredential(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{token: "abc"})

	require.NoError(t, mgr.Bootstrap(context.Background()))

	assert.Equal(t, model.Session{IsAuthenticated: true, IsLoading: false}, mgr.Session())
}

func TestSessionManager_BootstrapWithoutCredential(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{})

	require.NoError(t, mgr.Bootstrap(context.Background()))

	assert.Equal(t, model.Session{IsAuthenticated: false, IsLoading: false}, mgr.Session())
}

func TestSessionManager_BootstrapRunsOnce(t *testing.T) {
	store := &mockCredentialStore{}
	mgr := application.NewSessionManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.Bootstrap(ctx))
	store.token = "later"
	require.NoError(t, mgr.Bootstrap(ctx))

	assert.Equal(t, 1, store.gets)
	assert.Equal(t, model.SessionUnauthenticated, mgr.State())
}

func TestSessionManager_BootstrapStoreErrorLeavesUnauthenticated(t *testing.T) {
	storeErr := errors.New("disk gone")
	mgr := application.NewSessionManager(&mockCredentialStore{getErr: storeErr})

	err := mgr.Bootstrap(context.Background())

	require.ErrorIs(t, err, storeErr)
	assert.False(t, mgr.Session().IsLoading)
	assert.False(t, mgr.Session().IsAuthenticated)
}

func TestSessionManager_LoginThenBootstrapInFreshProcess(t *testing.T) {
	store := &mockCredentialStore{}
	ctx := context.Background()

	first := application.NewSessionManager(store)
	require.NoError(t, first.Bootstrap(ctx))
	require.NoError(t, first.Login(ctx, "tok-1"))

	second := application.NewSessionManager(store)
	require.NoError(t, second.Bootstrap(ctx))

	assert.True(t, second.Session().IsAuthenticated)
	token, err := second.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestSessionManager_LoginRejectsEmptyToken(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{})
	require.NoError(t, mgr.Bootstrap(context.Background()))

	err := mgr.Login(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, model.SessionUnauthenticated, mgr.State())
}

func TestSessionManager_LoginStoreFailureKeepsState(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{setErr: errors.New("read-only")})
	require.NoError(t, mgr.Bootstrap(context.Background()))

	err := mgr.Login(context.Background(), "tok")

	require.Error(t, err)
	assert.Equal(t, model.SessionUnauthenticated, mgr.State())
}

func TestSessionManager_LogoutAlwaysUnauthenticates(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		clearErr error
	}{
		{name: "authenticated", token: "tok"},
		{name: "already logged out"},
		{name: "store fails to clear", token: "tok", clearErr: errors.New("locked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockCredentialStore{token: tt.token, clearErr: tt.clearErr}
			mgr := application.NewSessionManager(store)
			ctx := context.Background()
			require.NoError(t, mgr.Bootstrap(ctx))

			err := mgr.Logout(ctx)

			if tt.clearErr != nil {
				require.ErrorIs(t, err, tt.clearErr)
			} else {
				require.NoError(t, err)
				assert.Empty(t, store.token)
			}
			assert.False(t, mgr.Session().IsAuthenticated)
		})
	}
}

func TestSessionManager_LoginBeforeBootstrapWins(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{})
	ctx := context.Background()

	require.NoError(t, mgr.Login(ctx, "tok"))
	require.NoError(t, mgr.Bootstrap(ctx))

	assert.Equal(t, model.SessionAuthenticated, mgr.State())
}

func TestSessionManager_InvalidateIgnoresSupersededCredential(t *testing.T) {
	store := &mockCredentialStore{token: "new"}
	mgr := application.NewSessionManager(store)
	ctx := context.Background()
	require.NoError(t, mgr.Bootstrap(ctx))

	changed, err := mgr.Invalidate(ctx, "old")

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "new", store.token)
	assert.True(t, mgr.Session().IsAuthenticated)
}

func TestSessionManager_ConcurrentInvalidateTransitionsOnce(t *testing.T) {
	store := &mockCredentialStore{token: "tok"}
	mgr := application.NewSessionManager(store)
	ctx := context.Background()
	require.NoError(t, mgr.Bootstrap(ctx))

	var notified atomic.Int32
	mgr.Subscribe(func(_, next model.SessionState) {
		if next == model.SessionUnauthenticated {
			notified.Add(1)
		}
	})

	const goroutines = 50
	var changedCount atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			changed, err := mgr.Invalidate(ctx, "tok")
			assert.NoError(t, err)
			if changed {
				changedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), changedCount.Load())
	assert.Equal(t, int32(1), notified.Load())
	assert.Equal(t, model.SessionUnauthenticated, mgr.State())
	assert.Empty(t, store.token)
}

func TestSessionManager_SubscribeSeesTransitions(t *testing.T) {
	mgr := application.NewSessionManager(&mockCredentialStore{})
	ctx := context.Background()

	var got []model.SessionState
	mgr.Subscribe(func(_, next model.SessionState) { got = append(got, next) })

	require.NoError(t, mgr.Bootstrap(ctx))
	require.NoError(t, mgr.Login(ctx, "tok"))
	require.NoError(t, mgr.Login(ctx, "tok2"))
	require.NoError(t, mgr.Logout(ctx))
	require.NoError(t, mgr.Logout(ctx))

	assert.Equal(t, []model.SessionState{
		model.SessionUnauthenticated,
		model.SessionAuthenticated,
		model.SessionUnauthenticated,
	}, got)
}
