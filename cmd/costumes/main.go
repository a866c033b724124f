package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/costumeconnections/costumes/internal/api"
	"github.com/costumeconnections/costumes/internal/config"
	"github.com/costumeconnections/costumes/internal/db"
	"github.com/costumeconnections/costumes/internal/middleware"
	"github.com/costumeconnections/costumes/internal/store"
	"github.com/costumeconnections/costumes/internal/web"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
	openTimeout     = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// parseFlags applies command-line overrides on top of the environment.
func parseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("costumes", flag.ContinueOnError)

	fs.StringVar(&cfg.Path, "db", cfg.Path, "")
	fs.StringVar(&cfg.Path, "d", cfg.Path, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprint(fs.Output(), `Usage: costumes [flags]

Flags:
  -d, -db <path>          SQLite database path (default: $DB_PATH or CostumeConnectionsDb.sqlite3);
                          rejected when DB_DRIVER=postgres
  -a, -addr <host:port>   listen address (default: :$PORT, :8888)
  -l, -log <path>         log file path (default: $LOG_PATH, stdout/stderr only)
  -h, -help               show this help and exit

The database driver and credentials come from DB_DRIVER, DB_USER, DB_PWD and
DB_HOST. A .env file in the working directory is read first.
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	var dbFlag string
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "db" || f.Name == "d" {
			dbFlag = f.Name
		}
	})
	if dbFlag != "" && cfg.Driver == db.Postgres {
		return fmt.Errorf("-%s sets the SQLite file and cannot be used with DB_DRIVER=postgres", dbFlag)
	}
	return nil
}

// opener returns the store's lazy opener for cfg. The schema is applied on
// every successful open.
func opener(cfg config.Config) store.Opener {
	return func(ctx context.Context) (*db.DB, error) {
		d, err := db.Open(cfg.Driver, cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, d); err != nil {
			d.Close()
			return nil, err
		}
		slog.Info("database ready", "driver", cfg.Driver, "database", db.DatabaseName)
		return d, nil
	}
}

// newHandler assembles the routes and middleware chain.
func newHandler(cfg config.Config, st *store.Store, metrics *middleware.Metrics, limiter *middleware.RateLimiter) (http.Handler, error) {
	pages, err := web.NewServer(st, cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("setting up web server: %w", err)
	}

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Handle("/metrics", metrics.Handler(cfg.MetricsUser, cfg.MetricsPass)).Methods(http.MethodGet)
	api.Register(r, st, limiter.Middleware)
	pages.Register(r, limiter.Middleware)

	var h http.Handler = r
	h = middleware.Logging(h)
	h = middleware.Recovery(h)
	h = handlers.ProxyHeaders(h)
	return h, nil
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(opener(cfg))
	defer st.Close()

	// The store would open on first request anyway; this only surfaces
	// configuration problems early.
	pingCtx, cancel := context.WithTimeout(ctx, openTimeout)
	if err := st.Ping(pingCtx); err != nil {
		slog.Warn("database not reachable yet", "error", err)
	}
	cancel()

	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst)
	limiter.OnLimit = metrics.CountThrottled
	go limiter.Cleanup(ctx, sweepInterval)

	handler, err := newHandler(cfg, st, metrics, limiter)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
