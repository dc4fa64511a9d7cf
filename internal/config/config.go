package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port            string
	Env             string
	LogLevel        string
	StoreDriver     string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	DB              DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
}

func Load() Config {
	return Config{
		Port:            getEnv("PORT", "4000"),
		Env:             getEnv("APP_ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		CORSOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		DB: DBConfig{
			Host:     getEnv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getEnv("BLUEPRINT_DB_PORT", "5432"),
			Database: getEnv("BLUEPRINT_DB_DATABASE", "webhooks"),
			Username: getEnv("BLUEPRINT_DB_USERNAME", "postgres"),
			Password: getEnv("BLUEPRINT_DB_PASSWORD", ""),
			Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
		},
	}
}

func (c Config) IsLocal() bool { return c.Env == "local" }

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("config: PORT is empty")
	}
	return nil
}

// URL renders the connection string with the given scheme ("postgres" for
// the pgx driver, "pgx5" for migrations).
func (d DBConfig) URL(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(d.Username, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Database,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
