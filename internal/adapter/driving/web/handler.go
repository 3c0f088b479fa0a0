// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driving/navigation"
	"github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/components"
	vm "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

const (
	pathLogin     = "/login"
	pathDashboard = "/dashboard"

	maxIconBytes   = 2 << 20
	maxUploadBytes = maxIconBytes + 64<<10

	msgUnreachable     = "The server could not be reached. Try again."
	msgUnexpectedReply = "The server sent an unexpected response."
	msgLoadFailed      = "Could not load categories."
)

// SessionService is the session surface the web shell drives.
type SessionService interface {
	State() model.SessionState
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// ActionList is the list controller surface behind the dashboard.
type ActionList interface {
	Apply(ctx context.Context, q model.PageQuery) error
	Refetch(ctx context.Context) (application.ListSnapshot, error)
}

// ActionCreator creates action categories.
type ActionCreator interface {
	CreateAction(ctx context.Context, in model.NewAction) error
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	session  SessionService
	auth     driven.Authenticator
	creator  ActionCreator
	list     ActionList
	iconBase *url.URL
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. iconBase
// resolves server-relative icon paths and may be nil.
func NewHandler(
	session SessionService,
	auth driven.Authenticator,
	creator ActionCreator,
	list ActionList,
	iconBase *url.URL,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:  session,
		auth:     auth,
		creator:  creator,
		list:     list,
		iconBase: iconBase,
		logger:   logger,
	}
}

// requireSession gates next on the session: a loading page while the stored
// credential is read, a redirect to the login view without one.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch h.session.State() {
		case model.SessionBootstrapping:
			h.renderBare(w, r, http.StatusOK, components.LoadingPage())
		case model.SessionAuthenticated:
			next(w, r)
		default:
			http.Redirect(w, r, pathLogin, http.StatusSeeOther)
		}
	}
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

// LoginForm renders the sign-in page, or skips it when already signed in.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	switch h.session.State() {
	case model.SessionBootstrapping:
		h.renderBare(w, r, http.StatusOK, components.LoadingPage())
		return
	case model.SessionAuthenticated:
		http.Redirect(w, r, pathDashboard, http.StatusSeeOther)
		return
	}

	data := vm.LoginViewModel{CSRFToken: csrfToken(w, r)}
	h.render(w, r, http.StatusOK, "Sign in", "", components.LoginPage(data))
}

// Login exchanges the submitted username and password for a credential and
// starts the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	data := vm.LoginViewModel{Username: username, CSRFToken: csrfToken(w, r)}

	if username == "" || password == "" {
		data.Error = "Username and password are required."
		h.render(w, r, http.StatusUnprocessableEntity, "Sign in", "", components.LoginPage(data))
		return
	}

	res, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		status, msg := loginFailure(err)
		if status >= http.StatusInternalServerError {
			h.logger.Warn("login failed", "error", err)
		}
		data.Error = msg
		h.render(w, r, status, "Sign in", "", components.LoginPage(data))
		return
	}

	if err := h.session.Login(r.Context(), res.Token); err != nil {
		h.logger.Error("failed to store credential", "error", err)
		data.Error = "Signed in, but the session could not be saved."
		h.render(w, r, http.StatusInternalServerError, "Sign in", "", components.LoginPage(data))
		return
	}

	h.logger.Info("signed in", "user", res.UserEmail)
	http.Redirect(w, r, pathDashboard, http.StatusSeeOther)
}

// loginFailure maps a login error to the status and message the form shows.
func loginFailure(err error) (int, string) {
	var apiErr *driven.APIError
	var transportErr *driven.TransportError

	switch {
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return http.StatusBadGateway, apiErr.Message
		}
		return http.StatusUnauthorized, apiErr.Message
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, msgUnreachable
	case errors.Is(err, driven.ErrInvalidLoginResponse):
		return http.StatusBadGateway, msgUnexpectedReply
	default:
		return http.StatusInternalServerError, msgUnexpectedReply
	}
}

// Logout ends the session and returns to the login view.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear credential", "error", err)
	}
	http.Redirect(w, r, pathLogin, http.StatusSeeOther)
}

// Dashboard renders the action category list for the page, size and search
// given in the query string. A missing size keeps the remembered one; a
// missing page means page 1.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	q := model.PageQuery{
		PageNumber: max(positiveInt(values.Get("page")), 1),
		PageSize:   positiveInt(values.Get("size")),
		SearchTerm: values.Get("search"),
	}

	if err := h.list.Apply(ctx, q); err != nil {
		h.logger.Warn("ignoring list query", "error", err)
	}

	snap, err := h.list.Refetch(ctx)
	if navigation.LoginRequested(ctx) {
		http.Redirect(w, r, pathLogin, http.StatusSeeOther)
		return
	}

	data := toDashboardViewModel(snap, h.iconBase)
	data.CSRFToken = csrfToken(w, r)
	status := http.StatusOK
	if err != nil {
		h.logger.Error("failed to list actions", "error", err)
		data.Error = apiFailureMessage(err, msgLoadFailed)
		status = http.StatusBadGateway
	}

	h.render(w, r, status, "Categories", data.CSRFToken, components.Dashboard(data))
}

// NewActionForm renders an empty create form with the defaults applied.
func (h *Handler) NewActionForm(w http.ResponseWriter, r *http.Request) {
	data := vm.CreateActionViewModel{
		Active:    true,
		Color:     model.DefaultActionColor,
		CSRFToken: csrfToken(w, r),
	}
	h.render(w, r, http.StatusOK, "Create category type", data.CSRFToken, components.CreateActionPage(data))
}

// CreateAction validates the submitted form, posts it to the API, and returns
// to the dashboard on success.
func (h *Handler) CreateAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	in, err := readNewAction(r)
	if err != nil {
		http.Error(w, "invalid icon upload", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token := csrfToken(w, r)

	err = h.creator.CreateAction(ctx, in)
	if navigation.LoginRequested(ctx) {
		http.Redirect(w, r, pathLogin, http.StatusSeeOther)
		return
	}
	if err == nil {
		h.logger.Info("created action category", "name", in.Name)
		http.Redirect(w, r, pathDashboard, http.StatusSeeOther)
		return
	}

	var verrs model.ValidationErrors
	isValidation := errors.As(err, &verrs)
	data := toCreateActionViewModel(in, verrs)
	status := http.StatusUnprocessableEntity
	if !isValidation {
		h.logger.Error("failed to create action", "error", err)
		data.Error = apiFailureMessage(err, "Could not create the category.")
		status = http.StatusBadGateway
	}
	data.CSRFToken = token

	h.render(w, r, status, "Create category type", token, components.CreateActionPage(data))
}

// readNewAction builds a NewAction from a parsed multipart form. A missing
// icon is left for validation to report.
func readNewAction(r *http.Request) (model.NewAction, error) {
	in := model.NewAction{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Active:      r.FormValue("active") == "1",
		Color:       strings.TrimSpace(r.FormValue("color")),
	}

	file, header, err := r.FormFile("icon")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	defer file.Close()

	icon, err := io.ReadAll(io.LimitReader(file, maxIconBytes+1))
	if err != nil {
		return in, err
	}
	if len(icon) > maxIconBytes {
		return in, errors.New("icon too large")
	}

	in.Icon = icon
	in.IconName = header.Filename
	return in, nil
}

// apiFailureMessage picks the message shown for a failed API call.
func apiFailureMessage(err error, fallback string) string {
	var apiErr *driven.APIError
	var transportErr *driven.TransportError

	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.As(err, &transportErr):
		return msgUnreachable
	default:
		return fallback
	}
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// render writes body inside the page layout. logoutToken, when non-empty,
// adds the logout button.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title, logoutToken string, body templ.Component) {
	h.renderBare(w, r, status, components.Layout(title, logoutToken, body))
}

func (h *Handler) renderBare(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
