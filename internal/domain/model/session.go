package model

// SessionState is the authentication state machine position.
type SessionState int

const (
	// SessionBootstrapping is the initial state, before the stored credential
	// has been read. It is left exactly once.
	SessionBootstrapping SessionState = iota
	// SessionAuthenticated means a credential is held.
	SessionAuthenticated
	// SessionUnauthenticated means no credential is held.
	SessionUnauthenticated
)

// String returns a human-readable name for the session state.
func (s SessionState) String() string {
	switch s {
	case SessionBootstrapping:
		return "bootstrapping"
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is the boolean view of the state that access-control callers read.
type Session struct {
	IsAuthenticated bool
	IsLoading       bool
}

// Session derives the boolean view for the state.
func (s SessionState) Session() Session {
	return Session{
		IsAuthenticated: s == SessionAuthenticated,
		IsLoading:       s == SessionBootstrapping,
	}
}
