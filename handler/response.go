package handler

import (
	"net/http"

	"github.com/a-h/templ"
)

// TemplOption configures a templ response.
type TemplOption func(*templResponse)

// WithStatus sets the status code written before the component.
func WithStatus(status int) TemplOption {
	return func(t *templResponse) { t.status = status }
}

type templResponse struct {
	component templ.Component
	status    int
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if t.status != 0 {
		w.WriteHeader(t.status)
	}
	return t.component.Render(r.Context(), w)
}

// Templ renders component as HTML.
//
//	return handler.Templ(views.DemoForm(model, state), handler.WithStatus(http.StatusUnprocessableEntity))
func Templ(component templ.Component, opts ...TemplOption) Response {
	t := &templResponse{component: component}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect answers with 303 See Other to url.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

type noContent struct{}

func (noContent) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent answers with 204.
func NoContent() Response {
	return noContent{}
}
