package model

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Defaults applied to the create-action form.
const (
	DefaultActionColor     = "#4F46E5"
	MaxDescriptionLength   = 200
	defaultIconContentType = "application/octet-stream"
	imageContentTypePrefix = "image/"
	validationFieldName    = "name"
	validationFieldDesc    = "description"
	validationFieldColor   = "color"
	validationFieldIcon    = "icon"
)

// PreferencePageSize is the preference key for the remembered list page size.
const PreferencePageSize = "page_size"

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// NewAction is the input for creating an action category.
type NewAction struct {
	Name        string
	Description string
	Active      bool
	Color       string
	IconName    string
	Icon        []byte
}

// StatusValue returns the wire encoding of Active: "1" or "0".
func (a NewAction) StatusValue() string {
	if a.Active {
		return "1"
	}
	return "0"
}

// IconContentType sniffs the icon bytes.
func (a NewAction) IconContentType() string {
	if len(a.Icon) == 0 {
		return defaultIconContentType
	}
	return http.DetectContentType(a.Icon)
}

// Validate checks the fields the admin API requires. It returns nil or a
// ValidationErrors listing every failing field in form order.
func (a NewAction) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, &ValidationError{Field: validationFieldName, Msg: "name is required"})
	}

	switch desc := strings.TrimSpace(a.Description); {
	case desc == "":
		errs = append(errs, &ValidationError{Field: validationFieldDesc, Msg: "description is required"})
	case utf8.RuneCountInString(desc) > MaxDescriptionLength:
		errs = append(errs, &ValidationError{
			Field: validationFieldDesc,
			Msg:   fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength),
		})
	}

	switch color := strings.TrimSpace(a.Color); {
	case color == "":
		errs = append(errs, &ValidationError{Field: validationFieldColor, Msg: "color is required"})
	case !hexColorPattern.MatchString(color):
		errs = append(errs, &ValidationError{Field: validationFieldColor, Msg: "use #hex format (e.g. #FFF or #4F46E5)"})
	}

	switch {
	case len(a.Icon) == 0:
		errs = append(errs, &ValidationError{Field: validationFieldIcon, Msg: "icon is required"})
	case !strings.HasPrefix(a.IconContentType(), imageContentTypePrefix):
		errs = append(errs, &ValidationError{Field: validationFieldIcon, Msg: "icon must be an image"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidHexColor reports whether s is a #RGB or #RRGGBB color.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}
