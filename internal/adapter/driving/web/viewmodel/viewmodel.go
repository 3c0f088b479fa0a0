// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// LoginViewModel holds the login form state.
type LoginViewModel struct {
	Username  string
	Error     string
	CSRFToken string
}

// ActionRowViewModel holds presentation-ready data for one row of the
// action category table.
type ActionRowViewModel struct {
	ID              string
	Name            string
	DescriptionHTML string
	IconURL         string
	StatusLabel     string
	IsActive        bool
	CreatedDate     string
	Color           string
}

// PageSizeOption is one entry of the page size selector.
type PageSizeOption struct {
	Size     int
	Selected bool
}

// DashboardViewModel holds the action category list and its pagination state.
type DashboardViewModel struct {
	Rows        []ActionRowViewModel
	SearchTerm  string
	PageNumber  int
	PageSize    int
	From        int
	To          int
	Total       int
	PrevPath    string
	NextPath    string
	CurrentPath string
	HasPrev     bool
	HasNext     bool
	PageSizes   []PageSizeOption
	Loading     bool
	Error       string
	CSRFToken   string
}

// CreateActionViewModel holds the create form values and per-field errors.
type CreateActionViewModel struct {
	Name        string
	Description string
	Active      bool
	Color       string
	FieldErrors map[string]string
	Error       string
	CSRFToken   string
}

// FieldError returns the error message for the named field, or "".
func (v CreateActionViewModel) FieldError(field string) string {
	return v.FieldErrors[field]
}
