package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hongminglow/jobportal/internal/cli"
	"github.com/hongminglow/jobportal/internal/config"
	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/logger"
	"github.com/hongminglow/jobportal/internal/portal"
	"github.com/hongminglow/jobportal/internal/session"
	"github.com/hongminglow/jobportal/internal/storage"
	"github.com/hongminglow/jobportal/internal/storage/file"
	"github.com/hongminglow/jobportal/internal/storage/sqlite"
)

const requestTimeout = 20 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, log, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, args []string) int {
	mirror := openMirror(ctx, cfg, log)
	defer mirror.Close()

	jar, err := gateway.NewJar(cfg.CookieJarPath())
	if err != nil {
		log.Warn("cookie jar unavailable, session will not persist", slog.String("error", err.Error()))
	}

	reg := prometheus.NewRegistry()
	collector := gateway.NewCollector(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, log)
		defer func() {
			ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctxShutdown); err != nil {
				log.Warn("metrics shutdown", slog.String("error", err.Error()))
			}
		}()
	}

	api, err := gateway.New(gateway.Options{
		BaseURL:    cfg.APIBaseURL,
		Jar:        jar,
		HTTPClient: &http.Client{Timeout: requestTimeout},
		Logger:     log,
		Metrics:    collector,
		RateLimit:  cfg.RateLimit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init gateway: %v\n", err)
		return 2
	}

	store := session.New(api, mirror, session.Options{Logger: log, RemoteLogout: cfg.RemoteLogout})
	store.WarmStart(ctx)
	if needsSession(args) {
		store.Restore(ctx)
	}

	app := cli.New(portal.New(api, store, log), cli.Options{Logger: log, HistoryPath: cfg.HistoryPath()})
	err = app.Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrFailed):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "jobportal: %v\n", err)
		return 1
	}
}

// openMirror opens the configured backend, falling back to memory so a
// broken state directory never blocks the portal.
func openMirror(ctx context.Context, cfg config.Config, log *slog.Logger) storage.Mirror {
	var (
		mirror storage.Mirror
		err    error
	)
	switch cfg.MirrorBackend {
	case config.MirrorSQLite:
		mirror, err = sqlite.NewStore(ctx, cfg.MirrorPath())
	default:
		mirror, err = file.NewStore(cfg.MirrorPath())
	}
	if err != nil {
		log.Warn("identity mirror unavailable", slog.String("backend", cfg.MirrorBackend), slog.String("error", err.Error()))
		return storage.NewMemory()
	}
	return mirror
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", gateway.MetricsHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()
	return srv
}

// needsSession reports whether the command reads the session. Help output
// is static and skips the round trip to the backend.
func needsSession(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "help", "-h", "--help":
		return false
	}
	return true
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; relying on existing environment")
	}
}
