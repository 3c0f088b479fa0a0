package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ActionStatus is the availability of an action category. The API has sent
// it as a boolean, as "Active"/"Inactive" labels, and as 1/0 across versions.
type ActionStatus string

const (
	ActionStatusActive   ActionStatus = "active"
	ActionStatusInactive ActionStatus = "inactive"
	ActionStatusUnknown  ActionStatus = "unknown"
)

// ParseActionStatus maps any wire representation of a status to an
// ActionStatus. Unrecognized values map to ActionStatusUnknown.
func ParseActionStatus(v any) ActionStatus {
	switch s := v.(type) {
	case bool:
		if s {
			return ActionStatusActive
		}
		return ActionStatusInactive
	case json.Number:
		return parseStatusString(s.String())
	case float64:
		return parseStatusNumber(s)
	case int:
		return parseStatusNumber(float64(s))
	case string:
		return parseStatusString(s)
	default:
		return ActionStatusUnknown
	}
}

func parseStatusString(s string) ActionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "activo", "true":
		return ActionStatusActive
	case "inactive", "inactivo", "false":
		return ActionStatusInactive
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return parseStatusNumber(f)
	}
	return ActionStatusUnknown
}

func parseStatusNumber(f float64) ActionStatus {
	switch f {
	case 1:
		return ActionStatusActive
	case 0:
		return ActionStatusInactive
	default:
		return ActionStatusUnknown
	}
}

// IsActive reports whether the status is ActionStatusActive.
func (s ActionStatus) IsActive() bool {
	return s == ActionStatusActive
}

// Label returns the display label for the status.
func (s ActionStatus) Label() string {
	switch s {
	case ActionStatusActive:
		return "Active"
	case ActionStatusInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

// ActionItem is an action category as listed by the admin API.
// Identity is ID; every other field is display data.
type ActionItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Icon        string       `json:"icon,omitempty"`
	Status      ActionStatus `json:"status"`
	CreatedAt   string       `json:"createdAt"`
	Color       string       `json:"color,omitempty"`
}

// createdAtLayouts are the timestamp formats observed in CreatedAt.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime parses CreatedAt. The boolean is false when the timestamp is
// empty or in no known layout.
func (a ActionItem) CreatedTime() (time.Time, bool) {
	raw := strings.TrimSpace(a.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
