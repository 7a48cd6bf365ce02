package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Security policy:
	// If true, AUTHD_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// refresh-token hashing must be HMAC-based.
	RequireTokenHMAC bool

	// Background sweep of expired refresh-token records.
	CleanupInterval time.Duration

	MetricsEnabled bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("AUTHD_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("AUTHD_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("AUTHD_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("AUTHD_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("AUTHD_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("AUTHD_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("AUTHD_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("AUTHD_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("AUTHD_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("AUTHD_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("AUTHD_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("AUTHD_REQUIRE_TOKEN_HMAC", false),

		CleanupInterval: EnvDuration("AUTHD_CLEANUP_INTERVAL", 10*time.Minute),

		MetricsEnabled: EnvBool("AUTHD_METRICS_ENABLED", true),

		CORSAllowedOrigins:   EnvStringSlice("AUTHD_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("AUTHD_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("AUTHD_CORS_MAX_AGE_SECONDS", 600),
	}
}
