// Package config loads configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/costumeconnections/costumes/internal/db"
)

// DefaultPort is used when PORT is unset.
const DefaultPort = "8888"

// Config holds the values needed to run the server.
type Config struct {
	Driver   db.Dialect
	User     string
	Password string
	Host     string
	Path     string // SQLite file

	Port      string
	Addr      string // overrides Port when set
	LogPath   string
	LogLevel  slog.Level
	PublicURL string

	SubmitRate  float64 // submissions per second per client
	SubmitBurst int

	MetricsUser string
	MetricsPass string
}

// Load reads a .env file if one exists, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	driver, err := db.ParseDialect(get("DB_DRIVER", string(db.SQLite)))
	if err != nil {
		return Config{}, err
	}

	rate, err := strconv.ParseFloat(get("SUBMIT_RATE", "0.2"), 64)
	if err != nil || rate <= 0 {
		return Config{}, fmt.Errorf("invalid SUBMIT_RATE %q", getenv("SUBMIT_RATE"))
	}
	burst, err := strconv.Atoi(get("SUBMIT_BURST", "5"))
	if err != nil || burst < 1 {
		return Config{}, fmt.Errorf("invalid SUBMIT_BURST %q", getenv("SUBMIT_BURST"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	c := Config{
		Driver:      driver,
		User:        getenv("DB_USER"),
		Password:    getenv("DB_PWD"),
		Host:        getenv("DB_HOST"),
		Path:        get("DB_PATH", db.DatabaseName+".sqlite3"),
		Port:        get("PORT", DefaultPort),
		LogPath:     getenv("LOG_PATH"),
		LogLevel:    level,
		PublicURL:   getenv("PUBLIC_URL"),
		SubmitRate:  rate,
		SubmitBurst: burst,
		MetricsUser: getenv("METRICS_USER"),
		MetricsPass: getenv("METRICS_PASS"),
	}

	if c.Driver == db.Postgres && c.Host == "" {
		return Config{}, errors.New("DB_HOST is required for the postgres driver")
	}
	return c, nil
}

// DSN returns the data source for the configured driver. For PostgreSQL the
// connection URL is composed from the user, password and host, always
// selecting db.DatabaseName.
func (c Config) DSN() string {
	if c.Driver != db.Postgres {
		return c.Path
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host,
		Path:   "/" + db.DatabaseName,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String()
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + c.Port
}
