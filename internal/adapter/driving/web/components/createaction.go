package components

import (
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// CreateActionPage renders the create-category form with per-field errors.
func CreateActionPage(data vm.CreateActionViewModel) templ.Component {
	return html(func(b *strings.Builder) {
		b.WriteString(`<section class="create"><h1>Create category type</h1>`)
		if data.Error != "" {
			b.WriteString(`<p class="error" role="alert">`)
			b.WriteString(esc(data.Error))
			b.WriteString(`</p>`)
		}
		b.WriteString(`<form method="post" action="/actions/new" enctype="multipart/form-data">`)
		csrfField(b, data.CSRFToken)

		b.WriteString(`<label>Name <input type="text" name="name" required value="`)
		b.WriteString(esc(data.Name))
		b.WriteString(`"></label>`)
		fieldError(b, data.FieldError("name"))

		b.WriteString(`<label>Description <textarea name="description" maxlength="`)
		b.WriteString(itoa(model.MaxDescriptionLength))
		b.WriteString(`" required>`)
		b.WriteString(esc(data.Description))
		b.WriteString(`</textarea></label>`)
		fieldError(b, data.FieldError("description"))

		b.WriteString(`<label>Color <input type="text" name="color" required value="`)
		b.WriteString(esc(data.Color))
		b.WriteString(`"></label>`)
		fieldError(b, data.FieldError("color"))

		b.WriteString(`<label>Icon <input type="file" name="icon" accept="image/*" required></label>`)
		fieldError(b, data.FieldError("icon"))

		b.WriteString(`<label><input type="checkbox" name="active" value="1"`)
		if data.Active {
			b.WriteString(` checked`)
		}
		b.WriteString(`> Active</label>`)

		b.WriteString(`<div class="actions"><a href="/dashboard">Cancel</a> <button type="submit">Create</button></div>`)
		b.WriteString(`</form></section>`)
	})
}

func fieldError(b *strings.Builder, msg string) {
	if msg == "" {
		return
	}
	b.WriteString(`<p class="field-error">`)
	b.WriteString(esc(msg))
	b.WriteString(`</p>`)
}
