package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/formbind/demo"
	"github.com/dmitrymomot/formbind/pkg/bindmetrics"
	"github.com/dmitrymomot/formbind/pkg/config"
	"github.com/dmitrymomot/formbind/pkg/httpserver"
	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/modelbind"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Metrics bool   `env:"METRICS_ENABLED" envDefault:"true"`
	HTTP    httpserver.Config
	Binder  modelbind.Config
}

func main() {
	cfg := config.MustLoad[appConfig]()

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "formbind-demo"),
		logger.WithContextExtractors(requestID),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("demo stopped", logger.Error(err))
		os.Exit(1)
	}
}

func requestID(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.RequestID(id), true
	}
	return slog.Attr{}, false
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	binderOpts := []modelbind.Option{modelbind.WithLogger(log)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		binderOpts = append(binderOpts, modelbind.WithObserver(bindmetrics.New(reg)))
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	mb, err := modelbind.NewFromConfig(cfg.Binder, binderOpts...)
	if err != nil {
		return err
	}

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/demo", http.StatusFound)
	})
	demo.NewController(mb, log).Routes(r)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
