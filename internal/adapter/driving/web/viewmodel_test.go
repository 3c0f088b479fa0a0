package web

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

func TestResolveIconURL(t *testing.T) {
	base, _ := url.Parse("https://api.example.com/api/v1/")

	tests := []struct {
		name string
		base *url.URL
		raw  string
		want string
	}{
		{"nil base", nil, "/icons/a.png", "/icons/a.png"},
		{"root relative", base, "/icons/a.png", "https://api.example.com/icons/a.png"},
		{"path relative", base, "icons/a.png", "https://api.example.com/api/v1/icons/a.png"},
		{"absolute unchanged", base, "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"data uri unchanged", base, "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"empty", base, "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveIconURL(tt.base, tt.raw))
		})
	}
}

func TestPageSizeOptions(t *testing.T) {
	opts := pageSizeOptions(10)
	assert.Len(t, opts, 3)
	assert.True(t, opts[1].Selected)

	custom := pageSizeOptions(7)
	sizes := make([]int, 0, len(custom))
	for _, o := range custom {
		sizes = append(sizes, o.Size)
	}
	assert.Equal(t, []int{5, 7, 10, 20}, sizes)
	assert.True(t, custom[1].Selected)
}

func TestDashboardPath(t *testing.T) {
	q := model.PageQuery{PageNumber: 3, PageSize: 5, SearchTerm: "a b"}

	assert.Equal(t, "/dashboard?page=2&search=a+b&size=5", dashboardPath(q, 2))
	assert.Equal(t, "/dashboard?page=1&size=5", dashboardPath(model.PageQuery{PageSize: 5}, 0))
}

func TestToActionRowViewModel(t *testing.T) {
	row := toActionRowViewModel(model.ActionItem{
		ID:        "1",
		Name:      "Bake",
		Status:    model.ActionStatusActive,
		CreatedAt: "not a date",
		Color:     "red",
	}, nil)

	assert.Equal(t, "Active", row.StatusLabel)
	assert.True(t, row.IsActive)
	assert.Equal(t, "not a date", row.CreatedDate)
	assert.Empty(t, row.Color)
	assert.Empty(t, row.IconURL)
}
