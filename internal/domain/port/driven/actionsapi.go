package driven

import (
	"context"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// Authenticator defines the driven port for the authentication surface.
// Login exchanges user credentials for a token without touching any local
// session state; the caller decides what to do with the result.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
}

// ActionAPI defines the driven port for the protected resource surface.
type ActionAPI interface {
	// ListActions fetches one page of action categories. Malformed response
	// bodies degrade to an empty page rather than an error.
	ListActions(ctx context.Context, q model.PageQuery) (model.PageResult[model.ActionItem], error)

	// CreateAction uploads a new action category with its icon. The input is
	// validated first; a model.ValidationErrors is returned without any call.
	CreateAction(ctx context.Context, a model.NewAction) error
}
