// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value of type R that has
// already been populated by one or more Bind functions, typically the
// handler binders of package modelbind:
//
//	type SignupRequest struct {
//		Email string `json:"email" validate:"required,email"`
//	}
//
//	mb := modelbind.New()
//	r.Post("/signup", handler.Wrap(func(ctx handler.Context, req SignupRequest) handler.Response {
//		return handler.JSON(req, handler.WithJSONStatus(http.StatusCreated))
//	}, handler.WithBinders[SignupRequest](mb.Request())))
//
// Bind failures and render failures go to the ErrorHandler. The default one,
// NewErrorHandler, answers modelstate.ValidationError with 422: as a JSON
// error document for JSON clients, otherwise as an HTML error page.
//
// Responses: JSON, JSONError, Templ, Redirect and NoContent.
package handler
