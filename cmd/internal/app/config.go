package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	authapi "fooddecider/cmd/internal/auth/api"
	"fooddecider/cmd/security/password"
	"fooddecider/cmd/security/token"

	"github.com/joho/godotenv"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" or "pretty"
	LogColor  bool

	// APIPrefix is prepended to every domain route ("/api" for the mobile client).
	APIPrefix string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL      string
	DBMaxConns       int32
	DBMinConns       int32
	DBConnectRetries int
	MigrateOnStart   bool

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	TraceStdout bool

	Auth     authapi.Config
	Token    token.Config
	Password password.Config
}

// LoadDotEnv loads path (default ".env") into the environment when it exists.
// Variables already set in the process win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads Config from environment variables with defaults.
// It fails when the token secret or the password settings are invalid.
func LoadConfig() (Config, error) {
	cfg := Config{
		HTTPAddr:  EnvString("FD_HTTP_ADDR", "0.0.0.0:3000"),
		LogLevel:  EnvString("FD_LOG_LEVEL", "info"),
		LogFormat: EnvString("FD_LOG_FORMAT", "json"),
		LogColor:  EnvBool("FD_LOG_COLOR", true),

		APIPrefix: normalizePrefix(EnvString("FD_API_PREFIX", "/api")),

		ReadHeaderTimeout: EnvDuration("FD_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("FD_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("FD_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("FD_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("FD_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:      EnvString("FD_DATABASE_URL", ""),
		DBMaxConns:       EnvInt32("FD_DB_MAX_CONNS", 10),
		DBMinConns:       EnvInt32("FD_DB_MIN_CONNS", 0),
		DBConnectRetries: EnvInt("FD_DB_CONNECT_RETRIES", 5),
		MigrateOnStart:   EnvBool("FD_MIGRATE_ON_START", false),

		ReadinessRequireDB: EnvBool("FD_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins:   EnvList("FD_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowCredentials: EnvBool("FD_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("FD_CORS_MAX_AGE_SECONDS", 600),

		TraceStdout: EnvBool("FD_TRACE_STDOUT", false),

		Auth: authapi.LoadConfig(os.LookupEnv),
	}

	tcfg, err := token.FromEnv()
	if err != nil {
		return Config{}, securityError(err)
	}
	cfg.Token = tcfg

	pcfg, err := password.FromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("password config: %w", err)
	}
	cfg.Password = pcfg

	return cfg, nil
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return "/" + strings.Trim(p, "/")
}
