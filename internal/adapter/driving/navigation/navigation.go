// Package navigation carries the caller's current view through a request
// context and turns the gateway's login requests into something the driving
// adapter can act on after the call returns.
package navigation

import (
	"context"
	"sync/atomic"

	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// ViewLogin names the login view.
const ViewLogin = "login"

type ctxKey struct{}

type state struct {
	view           string
	loginRequested atomic.Bool
}

// WithView returns a context recording that the caller is showing view.
func WithView(ctx context.Context, view string) context.Context {
	return context.WithValue(ctx, ctxKey{}, &state{view: view})
}

// View returns the view recorded in ctx, or "" when none was recorded.
func View(ctx context.Context) string {
	if s := fromContext(ctx); s != nil {
		return s.view
	}
	return ""
}

// LoginRequested reports whether a login navigation was requested during a
// call made with ctx (or a context derived from it).
func LoginRequested(ctx context.Context) bool {
	s := fromContext(ctx)
	return s != nil && s.loginRequested.Load()
}

func fromContext(ctx context.Context) *state {
	s, _ := ctx.Value(ctxKey{}).(*state)
	return s
}

// Compile-time interface satisfaction check.
var _ driven.LoginNavigator = (*Navigator)(nil)

// Navigator implements driven.LoginNavigator on top of the view recorded in
// the request context. OnRequest, when set, is additionally called for every
// request so callers without a request scope (the CLI) can react.
type Navigator struct {
	OnRequest func(ctx context.Context)
}

// OnLoginView reports whether ctx records the login view.
func (n *Navigator) OnLoginView(ctx context.Context) bool {
	return View(ctx) == ViewLogin
}

// RequestLogin marks ctx as needing the login view and calls OnRequest.
func (n *Navigator) RequestLogin(ctx context.Context) {
	if s := fromContext(ctx); s != nil {
		s.loginRequested.Store(true)
	}
	if n.OnRequest != nil {
		n.OnRequest(ctx)
	}
}
