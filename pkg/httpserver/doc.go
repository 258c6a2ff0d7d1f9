// Package httpserver runs an http.Handler with configurable timeouts,
// graceful shutdown and slog logging. It serves the formbind demo.
//
// Run binds the listener, serves until the context is cancelled or SIGINT or
// SIGTERM arrives, then calls http.Server.Shutdown within the configured
// deadline. Start and stop hooks run around the lifecycle.
//
//	cfg := config.MustLoad[httpserver.Config]()
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen and serve failures wrap ErrStart, shutdown failures wrap ErrShutdown.
package httpserver
