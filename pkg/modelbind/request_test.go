package modelbind_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/formbind/pkg/modelbind"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

type avatarForm struct {
	Name   string                  `json:"name"`
	Avatar *multipart.FileHeader   `json:"avatar"`
	Docs   []*multipart.FileHeader `json:"docs"`
}

type userRoute struct {
	ID    int    `json:"id"`
	Query string `json:"q"`
}

func multipartRequest(t *testing.T) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "alice"))
	for field, name := range map[string]string{"avatar": "a.png", "docs": "one.txt"} {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	part, err := w.CreateFormFile("docs", "two.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func TestModelBinder_BindRequest(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("url-encoded form and query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/demo?foo=query&bar=9", strings.NewReader("foo=form&baz=1&baz=2"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got DemoFormModel
		state, err := mb.BindRequest(r, &got)
		require.NoError(t, err)

		assert.True(t, state.IsValid())
		assert.Equal(t, DemoFormModel{TextBox: "form", DropdownList: 9, CheckBoxList: []int{1, 2}}, got)
	})

	t.Run("multipart files", func(t *testing.T) {
		t.Parallel()

		var got avatarForm
		state, err := mb.BindRequest(multipartRequest(t), &got)
		require.NoError(t, err)

		assert.True(t, state.IsValid())
		assert.Equal(t, "alice", got.Name)
		require.NotNil(t, got.Avatar)
		assert.Equal(t, "a.png", got.Avatar.Filename)
		require.Len(t, got.Docs, 2)
		assert.Equal(t, "one.txt", got.Docs[0].Filename)
		assert.Equal(t, "two.txt", got.Docs[1].Filename)
	})

	t.Run("accept-language selects messages", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/demo?bar=x", nil)
		r.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.5")

		var got DemoFormModel
		state, err := mb.BindRequest(r, &got)
		require.NoError(t, err)
		assert.Equal(t, []string{"El valor 'x' no es válido para bar."}, state.Errors("bar"))
	})

	t.Run("unsupported language keeps the default", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/demo?bar=x", nil)
		r.Header.Set("Accept-Language", "ja")

		var got DemoFormModel
		state, err := mb.BindRequest(r, &got)
		require.NoError(t, err)
		assert.Equal(t, []string{"The value 'x' is not valid for bar."}, state.Errors("bar"))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/demo", strings.NewReader("<xml/>"))
		r.Header.Set("Content-Type", "application/xml")

		var got DemoFormModel
		state, err := mb.BindRequest(r, &got)
		require.NoError(t, err)
		assert.True(t, state.IsValid())
	})

	t.Run("route parameters", func(t *testing.T) {
		t.Parallel()

		var got userRoute
		router := chi.NewRouter()
		router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			state, err := mb.BindRequest(r, &got)
			require.NoError(t, err)
			require.True(t, state.IsValid())
			w.WriteHeader(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42?q=find&id=7", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, userRoute{ID: 42, Query: "find"}, got)
	})
}

func TestModelBinder_HandlerBinders(t *testing.T) {
	t.Parallel()

	t.Run("query reports validation errors", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		err := modelbind.Query()(httptest.NewRequest(http.MethodGet, "/?foo=a&bar=x", nil), &got)

		var ve modelstate.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("bar"))
		assert.Equal(t, "a", got.TextBox)
	})

	t.Run("query succeeds", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		err := modelbind.Query()(httptest.NewRequest(http.MethodGet, "/?foo=a&bar=1", nil), &got)
		require.NoError(t, err)
		assert.Equal(t, DemoFormModel{TextBox: "a", DropdownList: 1}, got)
	})

	t.Run("form requires a content type", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		err := modelbind.Form()(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("foo=a")), &got)
		require.ErrorIs(t, err, valueprovider.ErrMissingContentType)
	})

	t.Run("form", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/?bar=5", strings.NewReader("foo=a"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got DemoFormModel
		require.NoError(t, modelbind.Form()(r, &got))
		assert.Equal(t, DemoFormModel{TextBox: "a"}, got)
	})

	t.Run("request", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/?bar=5", strings.NewReader("foo=a"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var got DemoFormModel
		require.NoError(t, modelbind.Request()(r, &got))
		assert.Equal(t, DemoFormModel{TextBox: "a", DropdownList: 5}, got)
	})

	t.Run("route without router", func(t *testing.T) {
		t.Parallel()

		var got userRoute
		require.NoError(t, modelbind.Route()(httptest.NewRequest(http.MethodGet, "/?id=1", nil), &got))
		assert.Equal(t, userRoute{}, got)
	})
}

func TestModelBinder_Observability(t *testing.T) {
	t.Parallel()

	var (
		events []modelbind.BindEvent
		logs   bytes.Buffer
	)
	mb := modelbind.New(
		modelbind.WithObserver(modelbind.ObserverFunc(func(_ context.Context, e modelbind.BindEvent) {
			events = append(events, e)
		})),
		modelbind.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	var got DemoFormModel
	_, err := mb.Bind(context.Background(), values(t, "bar=x"), &got, modelbind.Prefix("p"))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "modelbind_test.DemoFormModel", events[0].Model)
	assert.Equal(t, "p", events[0].Prefix)
	assert.Equal(t, modelbind.OutcomeSet, events[0].Outcome)
	assert.Equal(t, 1, events[0].Errors)
	assert.NoError(t, events[0].Err)

	assert.Contains(t, logs.String(), "value conversion failed")
	assert.Contains(t, logs.String(), "model bound")
}

func TestMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   language.Tag
	}{
		{name: "spanish", header: "es-MX", want: language.Spanish},
		{name: "english", header: "en-GB,en;q=0.8", want: language.English},
		{name: "weighted", header: "fr;q=0.9,es;q=0.8", want: language.Spanish},
		{name: "unsupported", header: "ja", want: language.English},
		{name: "malformed", header: ";;;", want: language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, modelbind.MessagesFor(tt.header).Language())
		})
	}

	es := modelbind.NewMessages(language.Spanish)
	assert.Equal(t, "No se proporcionó un valor para el parámetro o la propiedad 'email'.", es.MissingBindRequiredValue("email"))
	assert.Equal(t, "El cuerpo de la solicitud no es válido.", es.InvalidBody())

	en := modelbind.NewMessages(language.English)
	assert.Equal(t, "A value for the 'email' parameter or property was not provided.", en.MissingBindRequiredValue("email"))
	assert.Equal(t, "The value of 'code' is invalid.", en.ExpressionFailed("code"))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides and language", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "aliases.yaml")
		require.NoError(t, os.WriteFile(path, []byte("modelbind_test.untagged:\n  Name: full_name\n"), 0o600))

		mb, err := modelbind.NewFromConfig(modelbind.Config{
			OverridesFile:   path,
			DefaultLanguage: "es",
			MaxErrors:       10,
		})
		require.NoError(t, err)

		var got untagged
		state, err := mb.Bind(context.Background(), values(t, "full_name=x&Name=y&Count=z"), &got)
		require.NoError(t, err)

		assert.Equal(t, "x", got.Name)
		assert.Equal(t, []string{"El valor 'z' no es válido para Count."}, state.Errors("Count"))
	})

	t.Run("missing overrides file", func(t *testing.T) {
		t.Parallel()

		_, err := modelbind.NewFromConfig(modelbind.Config{OverridesFile: filepath.Join(t.TempDir(), "missing.yaml")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("invalid language", func(t *testing.T) {
		t.Parallel()

		_, err := modelbind.NewFromConfig(modelbind.Config{DefaultLanguage: "not a language!"})
		require.Error(t, err)
	})
}
