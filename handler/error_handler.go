package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// ErrorPageParams is passed to ErrorHandlerConfig.ErrorPage.
type ErrorPageParams struct {
	StatusCode int
	Message    string
	// Fields holds field errors for validation failures.
	Fields modelstate.ValidationError
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders the HTML error page. When nil a plain text body is written.
	ErrorPage func(ErrorPageParams) templ.Component
}

type errorInfo struct {
	status  int
	message string
	fields  modelstate.ValidationError
}

func classifyError(err error) errorInfo {
	info := errorInfo{
		status:  http.StatusInternalServerError,
		message: "An error occurred processing your request",
	}

	httpErr, ok := requestErrorStatus(err)
	if ok || errors.As(err, &httpErr) {
		info.status = httpErr.Code
		info.message = httpErr.Key
	}

	// Validation errors take precedence.
	var valErr modelstate.ValidationError
	if errors.As(err, &valErr) {
		info.status = http.StatusUnprocessableEntity
		info.message = "Validation failed"
		info.fields = valErr
	}
	return info
}

func logLevel(status int) slog.Level {
	if status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// wantsJSON reports whether the client sent or accepts JSON.
func wantsJSON(r *http.Request) bool {
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		if ct == "application/json" || strings.HasSuffix(ct, "+json") {
			return true
		}
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// NewErrorHandler returns an ErrorHandler that logs err and renders a JSON
// error document for JSON clients or an HTML page otherwise.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(ctx Context, err error) {
		r, w := ctx.Request(), ctx.ResponseWriter()
		info := classifyError(err)

		log.LogAttrs(r.Context(), logLevel(info.status), "request error",
			logger.Error(err),
			logger.ErrorCount(len(info.fields)),
			slog.Int("status_code", info.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if wantsJSON(r) {
			if renderErr := JSONError(err).Render(w, r); renderErr != nil {
				log.ErrorContext(r.Context(), "failed to render json error", logger.Error(renderErr))
			}
			return
		}

		if cfg.ErrorPage == nil {
			http.Error(w, info.message, info.status)
			return
		}

		page := cfg.ErrorPage(ErrorPageParams{
			StatusCode: info.status,
			Message:    info.message,
			Fields:     info.fields,
		})
		if renderErr := Templ(page, WithStatus(info.status)).Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error page", logger.Error(renderErr))
		}
	}
}
