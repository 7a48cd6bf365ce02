package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and security defaults.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	// OpenRegistration controls whether POST /user/register is served.
	OpenRegistration bool

	// Web cookie transport for refresh tokens. When enabled, browser
	// clients may carry the refresh token in an HttpOnly cookie paired
	// with a double-submit CSRF token instead of the JSON body.
	WebRefreshCookieEnabled bool
	RefreshCookieName       string
	CSRFCookieName          string
	CSRFHeaderName          string
	CookiePath              string
	CookieDomain            string
	CookieSecure            bool
	CookieSameSite          http.SameSite
}

// LoadConfigFromEnv loads auth API config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:              envBool("AUTHD_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:            envInt64("AUTHD_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		OpenRegistration:        envBool("AUTHD_AUTH_OPEN_REGISTRATION", true),
		WebRefreshCookieEnabled: envBool("AUTHD_AUTH_WEB_COOKIE", false),
		RefreshCookieName:       envString("AUTHD_AUTH_REFRESH_COOKIE_NAME", "authd_refresh"),
		CSRFCookieName:          envString("AUTHD_AUTH_CSRF_COOKIE_NAME", "authd_csrf"),
		CSRFHeaderName:          envString("AUTHD_AUTH_CSRF_HEADER_NAME", "X-CSRF-Token"),
		CookiePath:              envString("AUTHD_AUTH_COOKIE_PATH", "/auth"),
		CookieDomain:            envString("AUTHD_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:            envBool("AUTHD_AUTH_COOKIE_SECURE", true),
		CookieSameSite:          envSameSite("AUTHD_AUTH_COOKIE_SAMESITE", http.SameSiteStrictMode),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envSameSite(key string, def http.SameSite) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return def
	}
}
