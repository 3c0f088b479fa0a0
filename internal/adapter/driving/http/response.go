package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeLoginRequired tells the client the session is gone and it must log in.
func writeLoginRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated", LoginRequired: true})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error          string `json:"error"`
	LoginRequired  bool   `json:"login_required,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SessionResponse is the JSON representation of the session state.
type SessionResponse struct {
	State           string `json:"state"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
}

func toSessionResponse(state model.SessionState) SessionResponse {
	s := state.Session()
	return SessionResponse{
		State:           state.String(),
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
	}
}

// ActionResponse is the JSON representation of an action category.
type ActionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Status      string `json:"status"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	Color       string `json:"color,omitempty"`
}

// ActionsResponse is one page of action categories plus pagination state.
// Stale is true when a newer request superseded this one; the page then
// reflects the newer request's state.
type ActionsResponse struct {
	Items      []ActionResponse `json:"items"`
	TotalCount int              `json:"total_count"`
	PageNumber int              `json:"page_number"`
	PageSize   int              `json:"page_size"`
	SearchTerm string           `json:"search,omitempty"`
	From       int              `json:"from"`
	To         int              `json:"to"`
	HasPrev    bool             `json:"has_prev"`
	HasNext    bool             `json:"has_next"`
	Loading    bool             `json:"loading"`
	Stale      bool             `json:"stale,omitempty"`
}

func toActionsResponse(snap application.ListSnapshot) ActionsResponse {
	items := make([]ActionResponse, 0, len(snap.Result.Items))
	for _, a := range snap.Result.Items {
		items = append(items, ActionResponse{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Status:      string(a.Status),
			Active:      a.Status.IsActive(),
			CreatedAt:   a.CreatedAt,
			Color:       a.Color,
		})
	}

	from, to := snap.Result.Range(snap.Query)
	return ActionsResponse{
		Items:      items,
		TotalCount: snap.Result.TotalCount,
		PageNumber: snap.Query.PageNumber,
		PageSize:   snap.Query.PageSize,
		SearchTerm: snap.Query.SearchTerm,
		From:       from,
		To:         to,
		HasPrev:    snap.Result.HasPrev(snap.Query),
		HasNext:    snap.Result.HasNext(snap.Query),
		Loading:    snap.Loading,
		Stale:      snap.Stale,
	}
}
