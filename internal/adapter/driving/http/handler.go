// Package httphandler serves the JSON API of the local web shell.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driving/navigation"
	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// SessionReader exposes the session state to handlers.
type SessionReader interface {
	State() model.SessionState
}

// ActionList is the list controller surface the handlers drive.
type ActionList interface {
	Apply(ctx context.Context, q model.PageQuery) error
	Refetch(ctx context.Context) (application.ListSnapshot, error)
}

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	session SessionReader
	list    ActionList
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(session SessionReader, list ActionList, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		list:    list,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("GET /api/v1/actions", h.ListActions)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSession returns the current session state.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.session.State()))
}

// ListActions applies pageNumber, pageSize and search from the query string
// to the list controller and returns the refetched page.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	switch state := h.session.State(); state {
	case model.SessionBootstrapping:
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "session is loading")
		return
	case model.SessionUnauthenticated:
		writeLoginRequired(w)
		return
	}

	q, err := parsePageQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.list.Apply(ctx, q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.list.Refetch(ctx)
	if err != nil {
		h.writeAPIError(w, r, err)
		return
	}
	if navigation.LoginRequested(ctx) {
		writeLoginRequired(w)
		return
	}

	writeJSON(w, http.StatusOK, toActionsResponse(snap))
}

// writeAPIError maps a failed remote call to a response. 401s have already
// cleared the session in the gateway; this only reports them.
func (h *Handler) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *driven.APIError
	var transportErr *driven.TransportError

	switch {
	case errors.Is(err, driven.ErrUnauthorized):
		writeLoginRequired(w)
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: msg, UpstreamStatus: apiErr.StatusCode})
	case errors.As(err, &transportErr):
		h.logger.Warn("actions api unreachable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "actions api unreachable")
	default:
		h.logger.Error("failed to list actions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parsePageQuery(r *http.Request) (model.PageQuery, error) {
	values := r.URL.Query()
	var q model.PageQuery

	if v := values.Get("pageNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.New("pageNumber must be a positive integer")
		}
		q.PageNumber = n
	}
	if v := values.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.New("pageSize must be a positive integer")
		}
		q.PageSize = n
	}
	q.SearchTerm = values.Get("search")
	return q, nil
}
