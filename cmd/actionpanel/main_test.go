package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

func TestNewCLINavigator_WarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	nav := newCLINavigator(&buf)

	for range 3 {
		nav.RequestLogin(context.Background())
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "session expired"))
	assert.False(t, nav.OnLoginView(context.Background()))
}

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"line", "s3cret\n", "s3cret", false},
		{"crlf", "s3cret\r\n", "s3cret", false},
		{"no newline", "s3cret", "s3cret", false},
		{"empty", "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt bytes.Buffer
			got, err := readPassword(strings.NewReader(tt.input), &prompt)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Password: ", prompt.String())
		})
	}
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	assert.Nil(t, newLimiter(-1))

	l := newLimiter(2.5)
	require.NotNil(t, l)
	assert.Equal(t, 3, l.Burst())
}

func TestIconBaseURL(t *testing.T) {
	u := iconBaseURL("https://api.example.com/api/v1")
	require.NotNil(t, u)
	assert.Equal(t, "https://api.example.com/api/v1/", u.String())
}

func TestPrintActions(t *testing.T) {
	snap := application.ListSnapshot{
		Query: model.PageQuery{PageNumber: 1, PageSize: 2},
		Result: model.PageResult[model.ActionItem]{
			Items: []model.ActionItem{
				{ID: "1", Name: "Bake", Status: model.ActionStatusActive, CreatedAt: "2024-03-05T10:00:00Z", Color: "#FFF"},
				{ID: "2", Name: "Share", Status: model.ActionStatusInactive},
			},
			TotalCount: 3,
		},
	}

	var buf bytes.Buffer
	printActions(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Bake")
	assert.Contains(t, out, "2024-03-05")
	assert.Contains(t, out, "Inactive")
	assert.Contains(t, out, "1 - 2 of 3 (page 1, 2 per page)")
}

func TestPrintActions_Empty(t *testing.T) {
	var buf bytes.Buffer
	printActions(&buf, application.ListSnapshot{
		Query:  model.NewPageQuery(10),
		Result: model.EmptyPage[model.ActionItem](),
	})

	assert.Contains(t, buf.String(), "no results")
	assert.Contains(t, buf.String(), "0 - 0 of 0")
}

func TestNewStatusOutput(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	st := newStatusOutput(model.SessionAuthenticated, model.CredentialInfo{
		Present:   true,
		Subject:   "admin@example.com",
		ExpiresAt: past,
	}, "memory")

	assert.Equal(t, "authenticated", st.State)
	assert.True(t, st.Stored)
	require.NotNil(t, st.ExpiresAt)
	assert.True(t, st.Expired)

	var buf bytes.Buffer
	printStatus(&buf, st)
	assert.Contains(t, buf.String(), "(expired)")
	assert.Contains(t, buf.String(), "admin@example.com")

	opaque := newStatusOutput(model.SessionUnauthenticated, model.CredentialInfo{}, "memory")
	assert.Nil(t, opaque.ExpiresAt)
	assert.False(t, opaque.Expired)
}
