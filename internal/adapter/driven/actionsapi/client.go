// Package actionsapi implements the Authenticator and ActionAPI ports against
// the actions admin HTTP API.
package actionsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ActionAPI     = (*Client)(nil)
	_ driven.Authenticator = (*Client)(nil)
)

const (
	// maxBodyBytes caps how much of any response body is read.
	maxBodyBytes = 4 << 20
	// maxMessageRunes caps a plain-text error body used as a message.
	maxMessageRunes = 200
	defaultTimeout  = 20 * time.Second
)

// EnvelopeRecorder receives the envelope shape each list response matched.
type EnvelopeRecorder interface {
	ObserveEnvelope(shape string)
}

// ClientConfig holds everything NewClient needs.
type ClientConfig struct {
	APIBaseURL  string
	AuthBaseURL string
	Timeout     time.Duration

	// Transport carries resource calls. It should be a *Gateway; see NewTransport.
	Transport http.RoundTripper
	// AuthTransport carries login calls, which bypass the gateway.
	// Nil selects http.DefaultTransport.
	AuthTransport http.RoundTripper

	Envelopes EnvelopeRecorder
}

// Client talks to the authentication and resource surfaces of the API.
type Client struct {
	apiBase   *url.URL
	authBase  *url.URL
	http      *http.Client
	authHTTP  *http.Client
	envelopes EnvelopeRecorder
}

// NewTransport builds the resource transport stack:
//  1. Gateway (credential injection, content type, 401 handling, pacing)
//  2. CredentialCache (httpcache, partitioned by the attached credential)
//  3. http.DefaultTransport
func NewTransport(session SessionAuthority, opts ...GatewayOption) *Gateway {
	return NewGateway(NewCredentialCache(nil, DefaultCacheEntries), session, opts...)
}

// NewClient creates a Client. Both base URLs must be absolute.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiBase, err := parseBaseURL(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing API base URL: %w", err)
	}
	authBase, err := parseBaseURL(cfg.AuthBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing auth base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiBase:   apiBase,
		authBase:  authBase,
		http:      &http.Client{Transport: cfg.Transport, Timeout: timeout},
		authHTTP:  &http.Client{Transport: cfg.AuthTransport, Timeout: timeout},
		envelopes: cfg.Envelopes,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

// endpoint joins path segments onto base.
func endpoint(base *url.URL, segments ...string) string {
	return base.JoinPath(segments...).String()
}

// do sends req and returns the body of a 2xx response. Transport failures
// become *driven.TransportError and other statuses *driven.APIError.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	op := req.Method + " " + req.URL.Path

	resp, err := client.Do(req)
	if err != nil {
		return nil, &driven.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &driven.TransportError{Op: op, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.APIError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
			Body:       body,
		}
	}
	return body, nil
}

// serverMessage extracts a human-readable message from an error body: the
// message, error or title field of a JSON object, a JSON string, or short
// plain text.
func serverMessage(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"message", "error", "title"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strings.TrimSpace(s)
	}

	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") || !utf8.ValidString(text) {
		return ""
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes])
	}
	return text
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, driven.ErrUnauthorized)
}

func logUnmatchedEnvelope(path string, shape string, size int) {
	slog.Debug("list response did not match a known envelope",
		"path", path,
		"shape", shape,
		"bytes", size,
	)
}
