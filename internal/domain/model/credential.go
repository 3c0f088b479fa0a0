package model

import "time"

// CredentialKey is the storage key of the session credential. Absence of a
// value under this key means the user is not authenticated.
const CredentialKey = "token"

// CredentialInfo is display-only metadata about the current credential. It is
// filled on a best-effort basis and never drives session state.
type CredentialInfo struct {
	Present   bool
	Subject   string
	ExpiresAt time.Time // Zero when the token carries no readable expiry.
}

// Expired reports whether a readable expiry exists and lies before now.
func (c CredentialInfo) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// LoginResult is what a successful authentication call yields. Only Token is
// guaranteed; the rest are filled when the server sends the object form.
type LoginResult struct {
	Token      string
	Expiration string
	UserEmail  string
	UserName   string
}
