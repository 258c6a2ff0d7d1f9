// Package logger builds *slog.Logger values with functional options and
// provides attribute helpers that keep key names consistent.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "formbind-demo"),
//		logger.WithContextValue("request_id", requestIDKey),
//	)
//	log.DebugContext(ctx, "value conversion failed",
//		logger.Field("child.age"),
//		logger.Error(err),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
