// Package components renders the web shell's HTML with templ components.
package components

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// html builds a component whose markup is produced by fn in one write.
func html(fn func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fn(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func csrfField(b *strings.Builder, token string) {
	b.WriteString(`<input type="hidden" name="csrf_token" value="`)
	b.WriteString(esc(token))
	b.WriteString(`">`)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Layout wraps body in the page shell. When csrfToken is non-empty the
// header carries a logout button.
func Layout(title, csrfToken string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>`)
		b.WriteString(esc(title))
		b.WriteString(` - ActionPanel</title><style>`)
		b.WriteString(stylesheet)
		b.WriteString(`</style></head><body><header class="topbar"><a class="brand" href="/dashboard">ActionPanel</a>`)
		if csrfToken != "" {
			b.WriteString(`<form method="post" action="/logout" class="logout">`)
			csrfField(&b, csrfToken)
			b.WriteString(`<button type="submit">Log out</button></form>`)
		}
		b.WriteString(`</header><main>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// LoadingPage is shown while the stored session is being read. It reloads
// itself until the session settles.
func LoadingPage() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta http-equiv="refresh" content="1"><title>Loading - ActionPanel</title></head>`+
			`<body><p class="loading">Loading session...</p></body></html>`)
		return err
	})
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;background:#f9fafb;color:#12113a}` +
	`.topbar{display:flex;justify-content:space-between;align-items:center;padding:12px 24px;background:#261647}` +
	`.topbar a,.topbar button{color:#fff;background:none;border:0;font-weight:700;text-decoration:none;cursor:pointer}` +
	`main{max-width:1100px;margin:24px auto;padding:0 24px}` +
	`table{width:100%;border-collapse:collapse;background:#fff}` +
	`th,td{padding:12px 16px;border-bottom:1px solid #f3f4f6;text-align:left;font-size:14px}` +
	`.badge{padding:2px 10px;border-radius:6px;font-size:11px;font-weight:700}` +
	`.badge.active{background:#dcfce7;color:#15803d}.badge.inactive{background:#fee2e2;color:#b91c1c}` +
	`.icon{width:32px;height:32px;object-fit:contain}.swatch{display:inline-block;width:14px;height:14px;border-radius:3px}` +
	`.error{color:#b91c1c}.field-error{color:#b91c1c;font-size:12px}` +
	`.pager{display:flex;justify-content:space-between;align-items:center;padding:12px 0}` +
	`a.disabled{pointer-events:none;color:#9ca3af}`
