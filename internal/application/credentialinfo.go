package application

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// DescribeCredential returns display metadata about the stored credential.
// The token is treated as opaque by every other component; here it is only
// peeked at as an unverified JWT to show its expiry, and a token that is not a
// JWT still yields Present=true with empty claims.
func (m *SessionManager) DescribeCredential(ctx context.Context) (model.CredentialInfo, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return model.CredentialInfo{}, err
	}
	if token == "" {
		return model.CredentialInfo{}, nil
	}
	return describeToken(token), nil
}

func describeToken(token string) model.CredentialInfo {
	info := model.CredentialInfo{Present: true}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return info
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	return info
}
