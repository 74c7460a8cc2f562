package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretkey"

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// MigrateOnStart applies embedded migrations before serving (default true).
	MigrateOnStart bool

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// ExposeErrors controls whether 500 responses carry the raw error message.
	// Defaults to true outside prod.
	ExposeErrors bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
	// LogLevel is debug, info (default), warn or error.
	LogLevel string

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string

	// TrustedProxies lists proxy addresses or CIDR ranges (e.g. 10.0.0.0/8) whose X-Forwarded-For
	// and X-Real-IP headers are believed. Set via TRUSTED_PROXIES (comma-separated). When empty,
	// clients are identified by the connection's peer address only.
	TrustedProxies []string

	// StatsRefreshCron is the cron spec for refreshing the registered users gauge.
	StatsRefreshCron string
}

// Load reads configuration from the environment. When CONFIG_FILE is set, values from that
// file are used as a base and environment variables still take precedence.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	env := v.GetString("ENV")
	if !v.IsSet("EXPOSE_ERRORS") || v.GetString("EXPOSE_ERRORS") == "" {
		v.Set("EXPOSE_ERRORS", env != "prod")
	}

	cfg := Config{
		Port: v.GetString("PORT"),

		DBHost: v.GetString("DB_HOST"),
		DBPort: v.GetString("DB_PORT"),
		DBName: v.GetString("DB_NAME"),
		DBUser: v.GetString("DB_USER"),
		DBPass: v.GetString("DB_PASS"),

		DBMaxOpenConns: positiveOr(v.GetInt("DB_MAX_OPEN_CONNS"), 25),
		DBMaxIdleConns: positiveOr(v.GetInt("DB_MAX_IDLE_CONNS"), 5),
		MigrateOnStart: v.GetBool("MIGRATE_ON_START"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		Env:            env,
		JWTExpireHours: positiveOr(v.GetInt("JWT_EXPIRE_HOURS"), 24),
		ExposeErrors:   v.GetBool("EXPOSE_ERRORS"),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:  v.GetString("TLS_KEY_FILE"),

		LogFormat: v.GetString("LOG_FORMAT"),
		LogLevel:  v.GetString("LOG_LEVEL"),

		CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:     parseList(v.GetString("TRUSTED_PROXIES")),

		StatsRefreshCron: v.GetString("STATS_REFRESH_CRON"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "usersdb")
	v.SetDefault("DB_USER", "usersapp")
	v.SetDefault("DB_PASS", "userspass")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("MIGRATE_ON_START", true)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ENV", "dev")
	v.SetDefault("JWT_EXPIRE_HOURS", 24)

	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STATS_REFRESH_CRON", "@every 1m")
}

// Validate rejects settings that are unsafe or unusable.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set to a non-default value when ENV=prod")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q, must be text or json", c.LogFormat)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// UseTLS reports whether both TLS files are configured.
func (c Config) UseTLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// parseList splits a comma-separated list and trims spaces. Empty strings are omitted.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
