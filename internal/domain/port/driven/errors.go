package driven

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any APIError carrying a 401 status via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidLoginResponse is returned when a successful login response holds
// no usable token.
var ErrInvalidLoginResponse = errors.New("login response contained no token")

// APIError is a non-2xx response from the remote API. Message is the
// server-provided message when one could be extracted.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrUnauthorized and this is a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TransportError means the request never produced a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
