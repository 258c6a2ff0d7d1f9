package httpserver_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formbind/pkg/httpserver"
)

func waitForAddr(t *testing.T, srv *httpserver.Server) net.Addr {
	t.Helper()
	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		return addr != nil
	}, time.Second, 10*time.Millisecond)
	return addr
}

func TestServer_RunAndCancel(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	addr := waitForAddr(t, srv)
	resp, err := http.Get("http://" + addr.String())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	assert.Nil(t, srv.Addr())
}

func TestServer_ManualShutdown(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStartHook(func(context.Context, *slog.Logger) { close(started) }),
	)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	<-started

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown of a stopped server is a no-op")
}

func TestServer_StartErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()
		srv := httpserver.New(httpserver.WithAddr(":invalid"))
		err := srv.Run(context.Background(), nil)
		require.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("already running", func(t *testing.T) {
		t.Parallel()
		srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, nil) }()
		waitForAddr(t, srv)

		err := srv.Run(ctx, nil)
		require.ErrorIs(t, err, httpserver.ErrStart)
		require.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestServer_Hooks(t *testing.T) {
	t.Parallel()

	var started, stopped atomic.Bool
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithStartHook(func(context.Context, *slog.Logger) { started.Store(true) }),
		httpserver.WithStopHook(func(context.Context, *slog.Logger) { stopped.Store(true) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, http.NewServeMux()) }()
	waitForAddr(t, srv)
	cancel()
	require.NoError(t, <-done)

	assert.True(t, started.Load())
	assert.True(t, stopped.Load())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()

	addr := waitForAddr(t, srv)
	assert.Contains(t, addr.String(), "127.0.0.1:")
	cancel()
	require.NoError(t, <-done)
}

func TestOptions_Panic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownTimeout(-time.Second) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
	assert.Panics(t, func() { httpserver.WithStopHook(nil) })
}

func TestProbes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		body    string
	}{
		{"liveness", httpserver.LivenessHandler(), http.StatusOK, "ALIVE"},
		{"ready without checks", httpserver.ReadinessHandler(nil), http.StatusOK, "READY"},
		{
			"ready",
			httpserver.ReadinessHandler(nil, func(context.Context) error { return nil }),
			http.StatusOK, "READY",
		},
		{
			"not ready",
			httpserver.ReadinessHandler(nil,
				func(context.Context) error { return nil },
				func(context.Context) error { return errors.New("binder not configured") },
			),
			http.StatusServiceUnavailable, "NOT_READY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
