package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ValidationErrors collects every failing field of one input.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for the named field, or "" if it passed.
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Msg
		}
	}
	return ""
}
