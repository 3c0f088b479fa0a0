package actionsapi_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driven/actionsapi"
	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// --- Test doubles ---

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int) roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"message":"nope"}`)),
			Request:    req,
		}, nil
	}
}

type memoryCredentials struct {
	mu    sync.Mutex
	token string
}

func (m *memoryCredentials) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryCredentials) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryCredentials) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type recordingNavigator struct {
	onLogin  bool
	requests atomic.Int32
}

func (n *recordingNavigator) OnLoginView(_ context.Context) bool { return n.onLogin }
func (n *recordingNavigator) RequestLogin(_ context.Context)     { n.requests.Add(1) }

type recordingMetrics struct {
	mu            sync.Mutex
	statuses      []int
	invalidations int
}

func (m *recordingMetrics) ObserveRequest(_ string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) SessionInvalidated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
}

func authenticatedSession(t *testing.T, token string) (*application.SessionManager, *memoryCredentials) {
	t.Helper()
	store := &memoryCredentials{token: token}
	mgr := application.NewSessionManager(store)
	require.NoError(t, mgr.Bootstrap(context.Background()))
	return mgr, store
}

// --- Tests ---

func TestGateway_AttachesBearerAndJSONContentType(t *testing.T) {
	session, _ := authenticatedSession(t, "tok-123")
	var got *http.Request
	gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return respond(http.StatusOK)(req)
	}), session)

	req := httptest.NewRequest(http.MethodGet, "https://api.example.com/actions/admin-list", nil)
	resp, err := gw.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotNil(t, got)
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get(actionsapi.RequestIDHeader))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestGateway_NoCredentialNoAuthorization(t *testing.T) {
	session, _ := authenticatedSession(t, "")
	var got *http.Request
	gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return respond(http.StatusOK)(req)
	}), session)

	resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestGateway_PreservesMultipartContentType(t *testing.T) {
	session, _ := authenticatedSession(t, "tok")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", "A"))
	require.NoError(t, w.Close())

	var got *http.Request
	gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return respond(http.StatusOK)(req)
	}), session)

	req := httptest.NewRequest(http.MethodPost, "https://api.example.com/actions/admin-add", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := gw.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, w.FormDataContentType(), got.Header.Get("Content-Type"))
	assert.Contains(t, got.Header.Get("Content-Type"), "boundary="+w.Boundary())
}

func TestGateway_ContentTypeNegotiation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "unset", in: "", want: "application/json"},
		{name: "form urlencoded becomes json", in: "application/x-www-form-urlencoded", want: "application/json"},
		{name: "octet stream kept", in: "application/octet-stream", want: "application/octet-stream"},
		{name: "image kept", in: "image/png", want: "image/png"},
		{name: "garbage becomes json", in: "%%%", want: "application/json"},
	}

	session, _ := authenticatedSession(t, "tok")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
				got = req.Header.Get("Content-Type")
				return respond(http.StatusOK)(req)
			}), session)

			req := httptest.NewRequest(http.MethodPost, "https://api.example.com/x", strings.NewReader("x"))
			if tt.in != "" {
				req.Header.Set("Content-Type", tt.in)
			}
			resp, err := gw.RoundTrip(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_UnauthorizedClearsSessionAndRequestsLogin(t *testing.T) {
	session, store := authenticatedSession(t, "tok")
	nav := &recordingNavigator{}
	metrics := &recordingMetrics{}
	gw := actionsapi.NewGateway(respond(http.StatusUnauthorized), session,
		actionsapi.WithNavigator(nav), actionsapi.WithMetrics(metrics))

	resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "response is propagated, not swallowed")
	assert.Equal(t, model.SessionUnauthenticated, session.State())
	assert.Empty(t, store.token)
	assert.Equal(t, int32(1), nav.requests.Load())
	assert.Equal(t, 1, metrics.invalidations)
	assert.Equal(t, []int{http.StatusUnauthorized}, metrics.statuses)
}

func TestGateway_UnauthorizedOnLoginViewDoesNotNavigate(t *testing.T) {
	session, _ := authenticatedSession(t, "tok")
	nav := &recordingNavigator{onLogin: true}
	gw := actionsapi.NewGateway(respond(http.StatusUnauthorized), session, actionsapi.WithNavigator(nav))

	resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, model.SessionUnauthenticated, session.State())
	assert.Equal(t, int32(0), nav.requests.Load())
}

func TestGateway_OtherErrorsLeaveSessionAlone(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		session, store := authenticatedSession(t, "tok")
		nav := &recordingNavigator{}
		gw := actionsapi.NewGateway(respond(status), session, actionsapi.WithNavigator(nav))

		resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, status, resp.StatusCode)
		assert.True(t, session.Session().IsAuthenticated, "status %d", status)
		assert.Equal(t, "tok", store.token)
		assert.Equal(t, int32(0), nav.requests.Load())
	}
}

func TestGateway_ConcurrentUnauthorizedTransitionsOnce(t *testing.T) {
	session, _ := authenticatedSession(t, "tok")
	metrics := &recordingMetrics{}
	nav := &recordingNavigator{}

	var transitions atomic.Int32
	session.Subscribe(func(_, next model.SessionState) {
		if next == model.SessionUnauthenticated {
			transitions.Add(1)
		}
	})

	release := make(chan struct{})
	gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		<-release
		return respond(http.StatusUnauthorized)(req)
	}), session, actionsapi.WithMetrics(metrics), actionsapi.WithNavigator(nav))

	const calls = 20
	var wg sync.WaitGroup
	wg.Add(calls)
	for range calls {
		go func() {
			defer wg.Done()
			resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
			if assert.NoError(t, err) {
				resp.Body.Close()
			}
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), transitions.Load())
	assert.Equal(t, 1, metrics.invalidations)
	assert.Equal(t, int32(calls), nav.requests.Load(), "each failing call requests login once")
	assert.Equal(t, model.SessionUnauthenticated, session.State())
}

func TestGateway_StaleRejectionKeepsNewerLogin(t *testing.T) {
	session, store := authenticatedSession(t, "old")
	nav := &recordingNavigator{}

	gw := actionsapi.NewGateway(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		// A new login completes while the request with the old token is in flight.
		require.NoError(t, session.Login(req.Context(), "new"))
		return respond(http.StatusUnauthorized)(req)
	}), session, actionsapi.WithNavigator(nav))

	resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, session.Session().IsAuthenticated)
	assert.Equal(t, "new", store.token)
	assert.Equal(t, int32(0), nav.requests.Load())
}

func TestGateway_TransportErrorPropagates(t *testing.T) {
	session, _ := authenticatedSession(t, "tok")
	boom := io.ErrUnexpectedEOF
	metrics := &recordingMetrics{}
	gw := actionsapi.NewGateway(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	}), session, actionsapi.WithMetrics(metrics))

	resp, err := gw.RoundTrip(httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil))

	assert.Nil(t, resp)
	require.ErrorIs(t, err, boom)
	assert.True(t, session.Session().IsAuthenticated)
	assert.Equal(t, []int{0}, metrics.statuses)
}
