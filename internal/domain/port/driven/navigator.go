package driven

import "context"

// LoginNavigator receives navigation-to-login requests emitted when the
// session is rejected by the server. The context carries whatever view state
// the driving adapter attached to the request.
type LoginNavigator interface {
	// OnLoginView reports whether the caller is already showing the login view.
	OnLoginView(ctx context.Context) bool
	// RequestLogin asks the caller to navigate to the login view.
	RequestLogin(ctx context.Context)
}
