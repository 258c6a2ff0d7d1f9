package demo

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/formbind/handler"
	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/modelbind"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// Controller serves the demo form.
type Controller struct {
	binder       *modelbind.ModelBinder
	errorHandler handler.ErrorHandler
	log          *slog.Logger
}

// NewController returns a Controller binding with mb. A nil mb uses the
// package-level binder.
func NewController(mb *modelbind.ModelBinder, log *slog.Logger) *Controller {
	if mb == nil {
		mb = modelbind.Default()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(logger.Component("demo"))
	return &Controller{
		binder:       mb,
		errorHandler: handler.NewErrorHandler(log, handler.ErrorHandlerConfig{ErrorPage: ErrorPage}),
		log:          log,
	}
}

// Routes mounts the demo endpoints on r.
func (c *Controller) Routes(r chi.Router) {
	r.Get("/demo", handler.Wrap(c.Index, handler.WithErrorHandler[struct{}](c.errorHandler)))
	r.Get("/demo/get", handler.Wrap(c.Get,
		handler.WithBinders[FormRequest](keepValidationErrors(c.binder.Query())),
		handler.WithErrorHandler[FormRequest](c.errorHandler),
	))
	r.Post("/demo/post", handler.Wrap(c.Post,
		handler.WithBinders[FormRequest](keepValidationErrors(c.binder.Form())),
		handler.WithErrorHandler[FormRequest](c.errorHandler),
	))
	r.Post("/api/demo", handler.Wrap(c.API,
		handler.WithBinders[APIRequest](c.binder.Request()),
		handler.WithErrorHandler[APIRequest](c.errorHandler),
	))
}

// Index renders the empty form.
func (c *Controller) Index(ctx handler.Context, _ struct{}) handler.Response {
	return handler.Templ(FormPage("Demo", DemoFormModel{}, nil))
}

// Get re-renders the form bound from the query string.
func (c *Controller) Get(ctx handler.Context, req FormRequest) handler.Response {
	return c.render("Demo (GET)", req)
}

// Post re-renders the form bound from the form body.
func (c *Controller) Post(ctx handler.Context, req FormRequest) handler.Response {
	return c.render("Demo (POST)", req)
}

func (c *Controller) render(title string, req FormRequest) handler.Response {
	if len(req.Errors) > 0 {
		return handler.Templ(FormPage(title, req.Model, req.Errors), handler.WithStatus(http.StatusUnprocessableEntity))
	}
	return handler.Templ(FormPage(title, req.Model, nil))
}

// API echoes the bound form as JSON. Field errors are answered with 422 by
// the error handler.
func (c *Controller) API(ctx handler.Context, req APIRequest) handler.Response {
	if req.Trace {
		c.log.InfoContext(ctx, "demo form received",
			slog.String("foo", req.Form.TextBox),
			slog.Int("bar", req.Form.DropdownList),
			slog.Any("baz", req.Form.CheckBoxList),
		)
	}
	return handler.JSON(req.Form)
}

// keepValidationErrors binds into FormRequest.Model and hands field errors
// to the handler instead of the error handler.
func keepValidationErrors(bind handler.Bind) handler.Bind {
	return func(r *http.Request, v any) error {
		req, ok := v.(*FormRequest)
		if !ok {
			return bind(r, v)
		}
		err := bind(r, &req.Model)
		var ve modelstate.ValidationError
		if errors.As(err, &ve) {
			req.Errors = ve
			return nil
		}
		return err
	}
}
