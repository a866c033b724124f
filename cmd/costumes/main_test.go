package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costumeconnections/costumes/internal/config"
	"github.com/costumeconnections/costumes/internal/db"
	"github.com/costumeconnections/costumes/internal/middleware"
	"github.com/costumeconnections/costumes/internal/model"
	"github.com/costumeconnections/costumes/internal/store"
)

func TestParseFlags(t *testing.T) {
	cfg := config.Config{Path: "env.sqlite3", Port: "8888"}
	require.NoError(t, parseFlags(&cfg, []string{"-d", "flag.sqlite3", "-addr", "127.0.0.1:9000", "-l", "costumes.log"}))

	assert.Equal(t, "flag.sqlite3", cfg.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr())
	assert.Equal(t, "costumes.log", cfg.LogPath)
}

func TestParseFlagsKeepsEnvironment(t *testing.T) {
	cfg := config.Config{Path: "env.sqlite3", Port: "7000"}
	require.NoError(t, parseFlags(&cfg, nil))

	assert.Equal(t, "env.sqlite3", cfg.Path)
	assert.Equal(t, ":7000", cfg.ListenAddr())
}

func TestParseFlagsRejectsArguments(t *testing.T) {
	cfg := config.Config{}
	assert.Error(t, parseFlags(&cfg, []string{"serve"}))
}

func TestParseFlagsRejectsDBPathForPostgres(t *testing.T) {
	for _, name := range []string{"-db", "-d"} {
		cfg := config.Config{Driver: db.Postgres, Host: "db.example.com"}
		err := parseFlags(&cfg, []string{name, "costumes.sqlite3"})
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "postgres")
	}

	cfg := config.Config{Driver: db.Postgres, Host: "db.example.com"}
	assert.NoError(t, parseFlags(&cfg, []string{"-addr", ":9000"}))
}

func TestSplitHandler(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newSplitHandler(&out, &errOut, slog.LevelInfo)).With("app", "costumes")

	logger.Debug("hidden")
	logger.Info("costume submitted", "id", "abc")
	logger.WithGroup("db").Warn("slow", "op", "list")
	logger.Error("failed to list costumes")

	assert.Contains(t, out.String(), "costume submitted")
	assert.Contains(t, out.String(), "app=costumes")
	assert.Contains(t, out.String(), "db.op=list")
	assert.NotContains(t, out.String(), "hidden")
	assert.NotContains(t, out.String(), "failed to list")
	assert.Contains(t, errOut.String(), "failed to list costumes")
	assert.Contains(t, errOut.String(), "app=costumes")
}

func TestSplitHandlerLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	debug := slog.New(newSplitHandler(&out, &errOut, slog.LevelDebug))
	debug.Debug("opening database")
	assert.Contains(t, out.String(), "opening database")

	out.Reset()
	quiet := slog.New(newSplitHandler(&out, &errOut, slog.LevelError))
	quiet.Warn("slow")
	quiet.Error("failed")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "failed")
}

func TestOpenerAppliesSchema(t *testing.T) {
	cfg := config.Config{Driver: db.SQLite, Path: ":memory:"}
	st := store.New(opener(cfg))
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	id, err := st.Create(ctx, model.Costume{Title: "Witch Hat"})
	require.NoError(t, err)
	c, err := st.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Witch Hat", c.Title)
}

func newTestHandler(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	st := store.NewWithDB(db.NewTestDB(t))
	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(1, 1)
	limiter.OnLimit = metrics.CountThrottled

	h, err := newHandler(cfg, st, metrics, limiter)
	require.NoError(t, err)
	return h
}

func TestHandlerRoutes(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t, config.Config{}))
	t.Cleanup(srv.Close)

	for _, path := range []string{"/", "/costumes", "/health", "/api/costumes", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `route="/costumes"`)
}

func TestHandlerThrottlesSubmissions(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t, config.Config{}))
	t.Cleanup(srv.Close)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	form := url.Values{"title": {"Witch Hat"}}

	resp, err := client.PostForm(srv.URL+"/sell/submit", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.PostForm(srv.URL+"/sell/submit", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "costume_submissions_throttled_total 1")
}

func TestHandlerMetricsAuth(t *testing.T) {
	h := newTestHandler(t, config.Config{MetricsUser: "prom", MetricsPass: "secret"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}
