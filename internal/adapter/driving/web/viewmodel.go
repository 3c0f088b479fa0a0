package web

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	vm "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

const createdDateLayout = "2006-01-02"

// toDashboardViewModel converts a list snapshot into the dashboard view model.
// iconBase resolves relative icon paths; nil leaves them unresolved.
func toDashboardViewModel(snap application.ListSnapshot, iconBase *url.URL) vm.DashboardViewModel {
	rows := make([]vm.ActionRowViewModel, 0, len(snap.Result.Items))
	for _, item := range snap.Result.Items {
		rows = append(rows, toActionRowViewModel(item, iconBase))
	}

	q := snap.Query
	from, to := snap.Result.Range(q)

	return vm.DashboardViewModel{
		Rows:        rows,
		SearchTerm:  q.SearchTerm,
		PageNumber:  q.PageNumber,
		PageSize:    q.PageSize,
		From:        from,
		To:          to,
		Total:       snap.Result.TotalCount,
		PrevPath:    dashboardPath(q, q.PageNumber-1),
		NextPath:    dashboardPath(q, q.PageNumber+1),
		CurrentPath: dashboardPath(q, q.PageNumber),
		HasPrev:     snap.Result.HasPrev(q),
		HasNext:     snap.Result.HasNext(q),
		PageSizes:   pageSizeOptions(q.PageSize),
		Loading:     snap.Loading,
	}
}

// toActionRowViewModel converts a single ActionItem to a table row.
func toActionRowViewModel(item model.ActionItem, iconBase *url.URL) vm.ActionRowViewModel {
	created := item.CreatedAt
	if t, ok := item.CreatedTime(); ok {
		created = t.Format(createdDateLayout)
	}

	color := item.Color
	if !model.ValidHexColor(color) {
		color = ""
	}

	return vm.ActionRowViewModel{
		ID:              item.ID,
		Name:            item.Name,
		DescriptionHTML: RenderMarkdown(item.Description),
		IconURL:         SafeIconURL(resolveIconURL(iconBase, item.Icon)),
		StatusLabel:     item.Status.Label(),
		IsActive:        item.Status.IsActive(),
		CreatedDate:     created,
		Color:           color,
	}
}

// resolveIconURL resolves a server-relative icon path against base. Absolute
// URLs, data URIs, and unparseable values are returned unchanged.
func resolveIconURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == nil || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() {
		return raw
	}
	return base.ResolveReference(u).String()
}

// dashboardPath builds the dashboard link for page n of q.
func dashboardPath(q model.PageQuery, n int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(n, 1)))
	v.Set("size", strconv.Itoa(q.PageSize))
	if q.SearchTerm != "" {
		v.Set("search", q.SearchTerm)
	}
	return "/dashboard?" + v.Encode()
}

// pageSizeOptions lists the selector choices, including current when it is
// not one of the defaults.
func pageSizeOptions(current int) []vm.PageSizeOption {
	sizes := slices.Clone(model.PageSizeOptions)
	if current > 0 && !slices.Contains(sizes, current) {
		sizes = append(sizes, current)
		slices.Sort(sizes)
	}

	opts := make([]vm.PageSizeOption, 0, len(sizes))
	for _, s := range sizes {
		opts = append(opts, vm.PageSizeOption{Size: s, Selected: s == current})
	}
	return opts
}

// toCreateActionViewModel echoes a submitted form back with its errors.
func toCreateActionViewModel(in model.NewAction, errs model.ValidationErrors) vm.CreateActionViewModel {
	fieldErrors := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := fieldErrors[e.Field]; !seen {
			fieldErrors[e.Field] = e.Msg
		}
	}
	return vm.CreateActionViewModel{
		Name:        in.Name,
		Description: in.Description,
		Active:      in.Active,
		Color:       in.Color,
		FieldErrors: fieldErrors,
	}
}
