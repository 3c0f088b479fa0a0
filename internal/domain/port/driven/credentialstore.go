package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when a
// stored value is encrypted but ACTIONPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set ACTIONPANEL_SECRET_KEY")

// CredentialStore defines the driven port for persisting the single session
// credential across process restarts. The adapter layer is responsible for any
// encryption; this interface operates on plaintext values at the domain boundary.
// Implementations must be usable before any other component is initialized.
type CredentialStore interface {
	// Get returns the stored credential. Returns ("", nil) when none is stored.
	Get(ctx context.Context) (string, error)

	// Set stores or replaces the credential. No validation of its content is made.
	Set(ctx context.Context, token string) error

	// Clear removes the credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
