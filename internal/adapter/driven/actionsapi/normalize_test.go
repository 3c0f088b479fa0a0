package actionsapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driven/actionsapi"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

func TestNormalizePage_DoublyWrappedEnvelope(t *testing.T) {
	page := actionsapi.NormalizePage([]byte(`{"data":{"data":[{"id":"1","name":"A","status":1}],"totalElements":7,"pageNumber":1,"pageSize":10}}`))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, "A", page.Items[0].Name)
	assert.Equal(t, model.ActionStatusActive, page.Items[0].Status)
	assert.Equal(t, 7, page.TotalCount)
}

func TestNormalizePage_ItemsWithoutCountFallsBackToLength(t *testing.T) {
	page := actionsapi.NormalizePage([]byte(`{"items":[{"id":"2","name":"B","status":0}]}`))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "2", page.Items[0].ID)
	assert.Equal(t, model.ActionStatusInactive, page.Items[0].Status)
	assert.Equal(t, 1, page.TotalCount)
}

func TestNormalizePage_BareEmptyArray(t *testing.T) {
	page := actionsapi.NormalizePage([]byte(`[]`))

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalCount)
}

func TestNormalizePage_Envelopes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "bare array",
			raw:       `[{"id":1,"name":"A","status":true},{"id":2,"name":"B","status":false}]`,
			wantIDs:   []string{"1", "2"},
			wantTotal: 2,
		},
		{
			name:      "singly wrapped with top-level count",
			raw:       `{"data":[{"id":"a","name":"A","status":"Active"}],"totalRecords":30}`,
			wantIDs:   []string{"a"},
			wantTotal: 30,
		},
		{
			name:      "results",
			raw:       `{"results":[{"id":"r","name":"R","status":1}],"totalElements":"12"}`,
			wantIDs:   []string{"r"},
			wantTotal: 12,
		},
		{
			name:      "nested count falls back to top level",
			raw:       `{"totalRecords":40,"data":{"data":[{"id":"x","name":"X","status":1}]}}`,
			wantIDs:   []string{"x"},
			wantTotal: 40,
		},
		{
			name:      "nested count wins over top level",
			raw:       `{"totalRecords":40,"data":{"data":[{"id":"x","name":"X","status":1}],"totalElements":3}}`,
			wantIDs:   []string{"x"},
			wantTotal: 3,
		},
		{
			name:      "data.data preferred over items",
			raw:       `{"data":{"data":[{"id":"d","name":"D","status":1}]},"items":[{"id":"i","name":"I","status":1}]}`,
			wantIDs:   []string{"d"},
			wantTotal: 1,
		},
		{
			name:      "malformed data falls through to items",
			raw:       `{"data":[{"id":"d"}],"items":[{"id":"i","name":"I","status":1}]}`,
			wantIDs:   []string{"i"},
			wantTotal: 1,
		},
		{
			name:      "non-numeric count falls back to length",
			raw:       `{"items":[{"id":"1","name":"A","status":1},{"id":"2","name":"B","status":1}],"totalElements":"many"}`,
			wantIDs:   []string{"1", "2"},
			wantTotal: 2,
		},
		{
			name:      "negative count falls back to length",
			raw:       `{"items":[{"id":"1","name":"A","status":1}],"totalElements":-4}`,
			wantIDs:   []string{"1"},
			wantTotal: 1,
		},
		{
			name:      "fractional count truncates",
			raw:       `{"items":[{"id":"1","name":"A","status":1}],"totalElements":9.7}`,
			wantIDs:   []string{"1"},
			wantTotal: 9,
		},
		{
			name:      "empty data list keeps server count",
			raw:       `{"data":{"data":[],"totalElements":5}}`,
			wantIDs:   []string{},
			wantTotal: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := actionsapi.NormalizePage([]byte(tt.raw))

			ids := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
		})
	}
}

func TestNormalizePage_NeverFails(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`true`,
		`42`,
		`"token"`,
		`{`,
		`not json at all`,
		`{}`,
		`[1,2,3]`,
		`[null]`,
		`[{"id":null,"name":"A","status":1}]`,
		`[{"id":"1","name":null,"status":1}]`,
		`[{"id":"1","name":"A","status":null}]`,
		`{"data":[{"id":"1","name":"A","status":1},{"id":"2","name":"B","status":null}]}`,
		`[{"id":"1","name":"A"}]`,
		`{"data":null}`,
		`{"data":"x"}`,
		`{"data":{"data":{"data":[]}}}`,
		`{"items":{"0":{"id":"1"}}}`,
		`{"results":[[],[]]}`,
		`{"a":{"b":{"c":[{"d":[{"e":null}]}]}}}`,
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			var page model.PageResult[model.ActionItem]
			require.NotPanics(t, func() { page = actionsapi.NormalizePage([]byte(raw)) })
			assert.NotNil(t, page.Items)
			assert.Empty(t, page.Items)
			assert.Equal(t, 0, page.TotalCount)
		})
	}
}

func TestNormalizePage_FieldCoercion(t *testing.T) {
	page := actionsapi.NormalizePage([]byte(`[{
		"id": 17,
		"name": "Beach cleanup",
		"description": "Pick up **plastic**",
		"icon": "https://cdn.example.com/i.png",
		"status": "Inactive",
		"createdAt": "2025-03-01T10:00:00Z",
		"color": "#22C55E",
		"extra": {"ignored": true}
	}]`))

	require.Len(t, page.Items, 1)
	assert.Equal(t, model.ActionItem{
		ID:          "17",
		Name:        "Beach cleanup",
		Description: "Pick up **plastic**",
		Icon:        "https://cdn.example.com/i.png",
		Status:      model.ActionStatusInactive,
		CreatedAt:   "2025-03-01T10:00:00Z",
		Color:       "#22C55E",
	}, page.Items[0])
}

func TestNormalizeValue_DecodedFloats(t *testing.T) {
	v := map[string]any{
		"data": map[string]any{
			"data": []any{
				map[string]any{"id": float64(3), "name": "C", "status": float64(1)},
			},
			"totalElements": float64(11),
		},
	}

	page := actionsapi.NormalizeValue(v)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "3", page.Items[0].ID)
	assert.Equal(t, model.ActionStatusActive, page.Items[0].Status)
	assert.Equal(t, 11, page.TotalCount)
}
