package web

import "net/http"

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages that need a session go through requireSession; / and any path no
// other route claims redirect to the dashboard.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /dashboard", h.requireSession(h.Dashboard))
	mux.HandleFunc("GET /actions/new", h.requireSession(h.NewActionForm))
	mux.HandleFunc("POST /actions/new", h.requireSession(h.CreateAction))

	mux.HandleFunc("GET /", redirectTo(pathDashboard))
}
