package components

import (
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/viewmodel"
)

// LoginPage renders the sign-in form.
func LoginPage(data vm.LoginViewModel) templ.Component {
	return html(func(b *strings.Builder) {
		b.WriteString(`<section class="login"><h1>Sign in</h1>`)
		if data.Error != "" {
			b.WriteString(`<p class="error" role="alert">`)
			b.WriteString(esc(data.Error))
			b.WriteString(`</p>`)
		}
		b.WriteString(`<form method="post" action="/login">`)
		csrfField(b, data.CSRFToken)
		b.WriteString(`<label>Username <input type="text" name="username" autocomplete="username" required value="`)
		b.WriteString(esc(data.Username))
		b.WriteString(`"></label>`)
		b.WriteString(`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>`)
		b.WriteString(`<button type="submit">Sign in</button></form></section>`)
	})
}
