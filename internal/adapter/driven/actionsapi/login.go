package actionsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// defaultLoginError is shown when a failed login carries no server message.
const defaultLoginError = "invalid credentials"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login calls POST /Authentication/Login on the auth surface. The call does
// not go through the gateway and does not touch the session; callers pass the
// token to the session manager.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("marshaling login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint(c.authBase, "Authentication", "Login"), bytes.NewReader(payload))
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := do(c.authHTTP, req)
	if err != nil {
		var apiErr *driven.APIError
		if errors.As(err, &apiErr) && apiErr.Message == "" {
			apiErr.Message = defaultLoginError
		}
		return model.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	result, err := parseLoginResponse(body)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	return result, nil
}

// parseLoginResponse accepts a JSON string token, an object with a token
// field, or a bare token sent as plain text.
func parseLoginResponse(body []byte) (model.LoginResult, error) {
	trimmed := bytes.TrimSpace(body)

	var token string
	if err := json.Unmarshal(trimmed, &token); err == nil {
		return tokenResult(token)
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err == nil && obj != nil {
		raw, _ := obj["token"].(string)
		result, err := tokenResult(raw)
		if err != nil {
			return result, err
		}
		result.Expiration = scalarString(obj["expiration"])
		switch user := obj["user"].(type) {
		case map[string]any:
			result.UserEmail = scalarString(user["email"])
			result.UserName = scalarString(user["name"])
		case string:
			result.UserName = user
		}
		return result, nil
	}

	if json.Valid(trimmed) {
		return model.LoginResult{}, driven.ErrInvalidLoginResponse
	}
	text := string(trimmed)
	if strings.ContainsAny(text, " \t\r\n<{") {
		return model.LoginResult{}, driven.ErrInvalidLoginResponse
	}
	return tokenResult(text)
}

func tokenResult(token string) (model.LoginResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.LoginResult{}, driven.ErrInvalidLoginResponse
	}
	return model.LoginResult{Token: token}, nil
}
