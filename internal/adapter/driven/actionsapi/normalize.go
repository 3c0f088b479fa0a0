package actionsapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// Envelope shapes recognized by the normalizer, in match order.
const (
	ShapeBareArray  = "array"
	ShapeDataData   = "data.data"
	ShapeData       = "data"
	ShapeItems      = "items"
	ShapeResults    = "results"
	ShapeUnmatched  = "unmatched"
	ShapeInvalidRaw = "invalid"
)

// countFields are the total-count keys the list endpoint has used.
var countFields = []string{"totalElements", "totalRecords"}

// entityFields must be present and non-null for an element to count as an entity.
var entityFields = []string{"id", "name", "status"}

// maxCount bounds coerced counts to values a float64 represents exactly.
const maxCount = 1 << 53

// NormalizePage decodes raw and extracts a page of actions. It never fails:
// invalid JSON and unrecognized shapes yield an empty page.
func NormalizePage(raw []byte) model.PageResult[model.ActionItem] {
	page, _ := normalizeRaw(raw)
	return page
}

// NormalizeValue extracts a page of actions from an already decoded JSON
// value. Numbers may be float64 or json.Number.
func NormalizeValue(v any) model.PageResult[model.ActionItem] {
	page, _ := normalize(v)
	return page
}

func normalizeRaw(raw []byte) (model.PageResult[model.ActionItem], string) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return model.EmptyPage[model.ActionItem](), ShapeInvalidRaw
	}
	return normalize(v)
}

// normalize runs the fallback chain and reports which shape matched.
func normalize(v any) (model.PageResult[model.ActionItem], string) {
	if list, ok := v.([]any); ok {
		if !allEntities(list) {
			return model.EmptyPage[model.ActionItem](), ShapeUnmatched
		}
		items := toActions(list)
		return model.PageResult[model.ActionItem]{Items: items, TotalCount: len(items)}, ShapeBareArray
	}

	root, ok := v.(map[string]any)
	if !ok {
		return model.EmptyPage[model.ActionItem](), ShapeUnmatched
	}

	list, container, shape, ok := findList(root)
	if !ok {
		return model.EmptyPage[model.ActionItem](), ShapeUnmatched
	}

	items := toActions(list)
	total, found := countFrom(container)
	if !found && shape == ShapeDataData {
		total, found = countFrom(root)
	}
	if !found {
		total = len(items)
	}
	return model.PageResult[model.ActionItem]{Items: items, TotalCount: total}, shape
}

// findList tries each candidate field in priority order and returns the first
// entity list together with the object that directly wraps it.
func findList(root map[string]any) (list []any, container map[string]any, shape string, ok bool) {
	if data, isMap := root["data"].(map[string]any); isMap {
		if inner, isList := data["data"].([]any); isList && allEntities(inner) {
			return inner, data, ShapeDataData, true
		}
	}
	for _, key := range []string{"data", "items", "results"} {
		if candidate, isList := root[key].([]any); isList && allEntities(candidate) {
			return candidate, root, key, true
		}
	}
	return nil, nil, ShapeUnmatched, false
}

// allEntities reports whether every element has the minimal entity shape.
// An empty list qualifies.
func allEntities(list []any) bool {
	for _, el := range list {
		if !isEntity(el) {
			return false
		}
	}
	return true
}

// isEntity reports whether v is an object with id, name and status. A null
// field counts as missing.
func isEntity(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range entityFields {
		if m[key] == nil {
			return false
		}
	}
	return true
}

func toActions(list []any) []model.ActionItem {
	items := make([]model.ActionItem, 0, len(list))
	for _, el := range list {
		items = append(items, actionFromMap(el.(map[string]any)))
	}
	return items
}

func actionFromMap(m map[string]any) model.ActionItem {
	return model.ActionItem{
		ID:          scalarString(m["id"]),
		Name:        scalarString(m["name"]),
		Description: scalarString(m["description"]),
		Icon:        scalarString(m["icon"]),
		Status:      model.ParseActionStatus(m["status"]),
		CreatedAt:   scalarString(m["createdAt"]),
		Color:       scalarString(m["color"]),
	}
}

// scalarString renders strings and numbers; anything else becomes "".
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func countFrom(m map[string]any) (int, bool) {
	for _, key := range countFields {
		if n, ok := coerceCount(m[key]); ok {
			return n, true
		}
	}
	return 0, false
}

// coerceCount accepts a non-negative number or numeric string. Fractions
// are truncated.
func coerceCount(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxCount {
		return 0, false
	}
	return int(f), true
}
