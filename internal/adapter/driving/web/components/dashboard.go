package components

import (
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/viewmodel"
)

// Dashboard renders the action category table with search and pagination.
func Dashboard(data vm.DashboardViewModel) templ.Component {
	return html(func(b *strings.Builder) {
		b.WriteString(`<section class="dashboard"><div class="heading"><h1>Categories</h1>`)
		b.WriteString(`<a class="button" href="/actions/new">Create category type</a></div>`)

		b.WriteString(`<form method="get" action="/dashboard" class="search">`)
		b.WriteString(`<input type="hidden" name="size" value="`)
		b.WriteString(itoa(data.PageSize))
		b.WriteString(`"><input type="search" name="search" placeholder="Search" value="`)
		b.WriteString(esc(data.SearchTerm))
		b.WriteString(`"><button type="submit">Search</button></form>`)

		if data.Loading {
			b.WriteString(`<p class="notice">A newer request is still loading. <a href="`)
			b.WriteString(esc(data.CurrentPath))
			b.WriteString(`">Reload</a></p>`)
		}
		if data.Error != "" {
			b.WriteString(`<p class="error" role="alert">`)
			b.WriteString(esc(data.Error))
			b.WriteString(`</p>`)
		}

		b.WriteString(`<table><thead><tr><th>Name</th><th>Icon</th><th>Status</th>`)
		b.WriteString(`<th>Description</th><th>Created</th></tr></thead><tbody>`)
		switch {
		case len(data.Rows) == 0 && data.Loading:
			b.WriteString(`<tr><td colspan="5" class="empty">Loading records...</td></tr>`)
		case len(data.Rows) == 0:
			b.WriteString(`<tr><td colspan="5" class="empty">No records found.</td></tr>`)
		default:
			for _, row := range data.Rows {
				actionRow(b, row)
			}
		}
		b.WriteString(`</tbody></table>`)

		pager(b, data)
		b.WriteString(`</section>`)
	})
}

func actionRow(b *strings.Builder, row vm.ActionRowViewModel) {
	b.WriteString(`<tr data-id="`)
	b.WriteString(esc(row.ID))
	b.WriteString(`"><td>`)
	if row.Color != "" {
		b.WriteString(`<span class="swatch" style="background:`)
		b.WriteString(esc(row.Color))
		b.WriteString(`"></span> `)
	}
	b.WriteString(esc(row.Name))
	b.WriteString(`</td><td>`)
	if row.IconURL != "" {
		b.WriteString(`<img class="icon" src="`)
		b.WriteString(esc(row.IconURL))
		b.WriteString(`" alt="`)
		b.WriteString(esc(row.Name))
		b.WriteString(`">`)
	} else {
		b.WriteString(`<span class="icon placeholder">ID</span>`)
	}
	b.WriteString(`</td><td><span class="badge `)
	if row.IsActive {
		b.WriteString(`active`)
	} else {
		b.WriteString(`inactive`)
	}
	b.WriteString(`">`)
	b.WriteString(esc(row.StatusLabel))
	b.WriteString(`</span></td><td class="description">`)
	// Already sanitized by RenderMarkdown.
	b.WriteString(row.DescriptionHTML)
	b.WriteString(`</td><td>`)
	b.WriteString(esc(row.CreatedDate))
	b.WriteString(`</td></tr>`)
}

func pager(b *strings.Builder, data vm.DashboardViewModel) {
	b.WriteString(`<div class="pager"><form method="get" action="/dashboard" class="page-size">`)
	if data.SearchTerm != "" {
		b.WriteString(`<input type="hidden" name="search" value="`)
		b.WriteString(esc(data.SearchTerm))
		b.WriteString(`">`)
	}
	b.WriteString(`<label>Results per page <select name="size" onchange="this.form.submit()">`)
	for _, opt := range data.PageSizes {
		b.WriteString(`<option value="`)
		b.WriteString(itoa(opt.Size))
		b.WriteString(`"`)
		if opt.Selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(itoa(opt.Size))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select></label><noscript><button type="submit">Apply</button></noscript></form>`)

	b.WriteString(`<span class="summary">`)
	b.WriteString(itoa(data.From))
	b.WriteString(` - `)
	b.WriteString(itoa(data.To))
	b.WriteString(` of `)
	b.WriteString(itoa(data.Total))
	b.WriteString(`</span><nav>`)
	pageLink(b, "Previous", data.PrevPath, data.HasPrev)
	pageLink(b, "Next", data.NextPath, data.HasNext)
	b.WriteString(`</nav></div>`)
}

func pageLink(b *strings.Builder, label, href string, enabled bool) {
	if !enabled {
		b.WriteString(`<a class="disabled" aria-disabled="true">`)
		b.WriteString(label)
		b.WriteString(`</a>`)
		return
	}
	b.WriteString(`<a href="`)
	b.WriteString(esc(href))
	b.WriteString(`">`)
	b.WriteString(label)
	b.WriteString(`</a>`)
}
