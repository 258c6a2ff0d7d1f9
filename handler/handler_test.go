package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formbind/handler"
	"github.com/dmitrymomot/formbind/pkg/modelbind"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

type signupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age"`
}

func decodeError(t *testing.T, body io.Reader) *handler.ErrorDetail {
	t.Helper()
	var doc handler.JSONResponse
	require.NoError(t, json.NewDecoder(body).Decode(&doc))
	require.NotNil(t, doc.Error)
	return doc.Error
}

func TestWrap_BindsRequest(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()
	h := handler.Wrap(func(ctx handler.Context, req signupRequest) handler.Response {
		return handler.JSON(req, handler.WithJSONStatus(http.StatusCreated))
	}, handler.WithBinders[signupRequest](mb.Form()))

	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("email=ann%40example.com&age=30"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"email":"ann@example.com","age":30}}`, rec.Body.String())
}

func TestWrap_ValidationErrorAsJSON(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()
	called := false
	h := handler.Wrap(func(ctx handler.Context, req signupRequest) handler.Response {
		called = true
		return handler.NoContent()
	}, handler.WithBinders[signupRequest](mb.Form()))

	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("email=nope&age=old"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h(rec, r)

	assert.False(t, called)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Contains(t, detail.Details, "age")
	assert.Len(t, detail.Details["age"], 1)
}

func TestWrap_ValidationErrorAsPage(t *testing.T) {
	t.Parallel()

	page := func(p handler.ErrorPageParams) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<p>%d %s (%d fields)</p>", p.StatusCode, p.Message, len(p.Fields))
			return err
		})
	}
	h := handler.Wrap(func(ctx handler.Context, req signupRequest) handler.Response {
		return handler.NoContent()
	},
		handler.WithBinders[signupRequest](modelbind.Form()),
		handler.WithErrorHandler[signupRequest](handler.NewErrorHandler(nil, handler.ErrorHandlerConfig{ErrorPage: page})),
	)

	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("age=old"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, r)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<p>422 Validation failed (2 fields)</p>", rec.Body.String())
}

func TestWrap_RequestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		status      int
		code        string
	}{
		{"unsupported media type", "application/xml", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"broken multipart", "multipart/form-data", http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handler.Wrap(func(ctx handler.Context, req signupRequest) handler.Response {
				return handler.NoContent()
			}, handler.WithBinders[signupRequest](modelbind.Form()))

			r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("<x/>"))
			r.Header.Set("Content-Type", tt.contentType)
			r.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			h(rec, r)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec.Body).Code)
		})
	}
}

func TestWrap_NilResponseAndRenderError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	errorHandler := handler.NewErrorHandler(log, handler.ErrorHandlerConfig{})

	h := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response {
		return nil
	}, handler.WithErrorHandler[struct{}](errorHandler))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), handler.ErrNilResponse.Error())
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestWrap_Decorators(t *testing.T) {
	t.Parallel()

	var order []string
	trace := func(name string) handler.Decorator[struct{}] {
		return func(next handler.HandlerFunc[struct{}]) handler.HandlerFunc[struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response {
		order = append(order, "handler")
		return handler.Redirect("/done")
	}, handler.WithDecorators(trace("outer"), trace("inner")))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/done", rec.Header().Get("Location"))
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	ve := modelstate.NewValidationError()
	ve.Add("items[0].name", "The name field is required.")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ve, http.StatusUnprocessableEntity, "validation_error"},
		{"wrapped validation", fmt.Errorf("bind: %w", ve), http.StatusUnprocessableEntity, "validation_error"},
		{"http error", handler.NewHTTPError(http.StatusNotFound, "not_found"), http.StatusNotFound, "not_found"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			require.NoError(t, handler.JSON(tt.err).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec.Body).Code)
		})
	}
}
