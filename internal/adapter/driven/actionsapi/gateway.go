package actionsapi

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// RequestIDHeader carries a per-call correlation ID on every gateway request.
const RequestIDHeader = "X-Request-ID"

// SessionAuthority is the session surface the gateway needs. It is satisfied
// by *application.SessionManager.
type SessionAuthority interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, rejected string) (bool, error)
	Session() model.Session
}

// GatewayMetrics receives per-call observations. *metrics.Collector satisfies it.
type GatewayMetrics interface {
	ObserveRequest(method string, status int, d time.Duration)
	SessionInvalidated()
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLimiter paces outgoing calls. A nil limiter disables pacing.
func WithLimiter(l *rate.Limiter) GatewayOption {
	return func(g *Gateway) { g.limiter = l }
}

// WithMetrics records call counts, latencies and invalidations.
func WithMetrics(m GatewayMetrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithNavigator sets the receiver of login navigation requests.
func WithNavigator(n driven.LoginNavigator) GatewayOption {
	return func(g *Gateway) { g.navigator = n }
}

// Gateway is an http.RoundTripper that wraps every call to the protected
// resource API. Before the call it attaches the bearer credential and sets the
// payload content type; after it, a 401 invalidates the session and requests
// navigation to login. The response itself is always returned unchanged, and
// the gateway never retries.
type Gateway struct {
	next      http.RoundTripper
	session   SessionAuthority
	navigator driven.LoginNavigator
	limiter   *rate.Limiter
	metrics   GatewayMetrics
}

// Compile-time interface satisfaction check.
var _ http.RoundTripper = (*Gateway)(nil)

// NewGateway wraps next. A nil next uses http.DefaultTransport.
func NewGateway(next http.RoundTripper, session SessionAuthority, opts ...GatewayOption) *Gateway {
	if next == nil {
		next = http.DefaultTransport
	}
	g := &Gateway{next: next, session: session}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RoundTrip implements http.RoundTripper.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			closeBody(req)
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
	}

	token, err := g.session.Token(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	out := req.Clone(ctx)
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if !isBinaryPayload(out.Header.Get("Content-Type")) {
		out.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	out.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := g.next.RoundTrip(out)
	elapsed := time.Since(start)
	if err != nil {
		g.observe(out.Method, 0, elapsed)
		slog.Debug("api call failed",
			"request_id", requestID,
			"method", out.Method,
			"path", out.URL.Path,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	g.observe(out.Method, resp.StatusCode, elapsed)
	slog.Debug("api call",
		"request_id", requestID,
		"method", out.Method,
		"path", out.URL.Path,
		"status", resp.StatusCode,
		"duration", elapsed,
		"from_cache", resp.Header.Get("X-From-Cache") == "1",
	)

	if resp.StatusCode == http.StatusUnauthorized {
		g.handleUnauthorized(ctx, token, requestID)
	}
	return resp, nil
}

// handleUnauthorized clears the session for the rejected token and, unless
// the caller is already on the login view, requests navigation to it. It runs
// once per failing call.
func (g *Gateway) handleUnauthorized(ctx context.Context, token, requestID string) {
	changed, err := g.session.Invalidate(ctx, token)
	if err != nil {
		slog.Error("failed to clear rejected credential", "request_id", requestID, "error", err)
	}
	if changed {
		slog.Warn("session rejected by server", "request_id", requestID)
		if g.metrics != nil {
			g.metrics.SessionInvalidated()
		}
	}

	if g.navigator == nil || g.session.Session().IsAuthenticated {
		return
	}
	if g.navigator.OnLoginView(ctx) {
		return
	}
	g.navigator.RequestLogin(ctx)
}

func (g *Gateway) observe(method string, status int, d time.Duration) {
	if g.metrics != nil {
		g.metrics.ObserveRequest(method, status, d)
	}
}

// isBinaryPayload reports whether contentType describes a body whose encoding
// the transport or caller owns: multipart forms (boundary parameter) and raw
// binary uploads.
func isBinaryPayload(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "multipart/") ||
		strings.HasPrefix(mediaType, "image/") ||
		mediaType == "application/octet-stream"
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
