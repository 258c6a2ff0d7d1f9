package demo

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/formbind/handler"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// FormPage renders the demo form twice, once submitting with GET and once with POST,
// pre-filled from model with errors shown next to their fields.
func FormPage(title string, model DemoFormModel, errs modelstate.ValidationError) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<!DOCTYPE html><html><head><title>%s</title></head><body>", templ.EscapeString(title))
		fmt.Fprintf(&b, "<h1>%s</h1>", templ.EscapeString(title))
		if errs != nil && errs.Has("") {
			fmt.Fprintf(&b, `<p class="error">%s</p>`, templ.EscapeString(errs.Get("")))
		}
		for _, f := range []struct{ method, action string }{{"get", "/demo/get"}, {"post", "/demo/post"}} {
			writeForm(&b, f.method, f.action, model, errs)
		}
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeForm(b *strings.Builder, method, action string, model DemoFormModel, errs modelstate.ValidationError) {
	fmt.Fprintf(b, `<form method="%s" action="%s">`, method, action)

	fmt.Fprintf(b, `<label>Text <input type="text" name="foo" value="%s"></label>`, templ.EscapeString(model.TextBox))
	writeFieldError(b, errs, "foo")

	b.WriteString(`<label>Dropdown <select name="bar"><option value="">-</option>`)
	for _, o := range Options {
		fmt.Fprintf(b, `<option value="%d"%s>%s</option>`, o.Value, attrIf(model.DropdownList == o.Value, " selected"), templ.EscapeString(o.Label))
	}
	b.WriteString(`</select></label>`)
	writeFieldError(b, errs, "bar")

	for _, o := range Options {
		fmt.Fprintf(b, `<label><input type="checkbox" name="baz" value="%d"%s> %s</label>`,
			o.Value, attrIf(slices.Contains(model.CheckBoxList, o.Value), " checked"), templ.EscapeString(o.Label))
	}
	writeFieldError(b, errs, "baz")

	fmt.Fprintf(b, `<button type="submit">%s</button></form>`, strings.ToUpper(method))
}

func writeFieldError(b *strings.Builder, errs modelstate.ValidationError, field string) {
	for _, msg := range errs[field] {
		fmt.Fprintf(b, `<span class="error" data-field="%s">%s</span>`, field, templ.EscapeString(msg))
	}
}

func attrIf(ok bool, attr string) string {
	if ok {
		return attr
	}
	return ""
}

// ErrorPage renders the page used by the demo error handler.
func ErrorPage(p handler.ErrorPageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<!DOCTYPE html><html><body><h1>%s</h1><p>%s</p>",
			strconv.Itoa(p.StatusCode), templ.EscapeString(p.Message))
		if len(p.Fields) > 0 {
			b.WriteString("<ul>")
			for field, msgs := range p.Fields {
				for _, msg := range msgs {
					fmt.Fprintf(&b, "<li>%s: %s</li>", templ.EscapeString(field), templ.EscapeString(msg))
				}
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
