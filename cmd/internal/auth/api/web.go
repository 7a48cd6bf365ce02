package authapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"authd/cmd/security/token"
)

// Browser transport for refresh tokens. When AUTHD_AUTH_WEB_COOKIE is
// on, the refresh token rides in an HttpOnly cookie and never appears
// in response bodies; a paired script-readable CSRF cookie must be
// echoed back in a header on refresh (double submit).

const csrfTokenBytes = 32

func (h *Handler) webCookiesEnabled() bool {
	return h.cfg.WebRefreshCookieEnabled
}

// setWebSessionCookies installs the refresh and CSRF cookies for a
// fresh session. Both expire with the refresh token.
func (h *Handler) setWebSessionCookies(w http.ResponseWriter, refreshToken string, refreshExp time.Time) (string, error) {
	csrf, err := token.NewOpaque(csrfTokenBytes)
	if err != nil {
		return "", err
	}

	h.writeCookie(w, h.cfg.RefreshCookieName, refreshToken, refreshExp, true)
	h.writeCookie(w, h.cfg.CSRFCookieName, csrf, refreshExp, false)
	return csrf, nil
}

func (h *Handler) clearWebSessionCookies(w http.ResponseWriter) {
	if !h.cfg.WebRefreshCookieEnabled {
		return
	}
	h.writeCookie(w, h.cfg.RefreshCookieName, "", time.Unix(0, 0).UTC(), true)
	h.writeCookie(w, h.cfg.CSRFCookieName, "", time.Unix(0, 0).UTC(), false)
}

func (h *Handler) refreshTokenFromCookie(r *http.Request) (string, bool) {
	if !h.cfg.WebRefreshCookieEnabled {
		return "", false
	}
	c, err := r.Cookie(h.cfg.RefreshCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	return v, v != ""
}

// csrfDoubleSubmitValid reports whether the CSRF cookie matches the
// request header named by the config. Empty values never match.
func (h *Handler) csrfDoubleSubmitValid(r *http.Request) bool {
	if !h.cfg.WebRefreshCookieEnabled {
		return false
	}
	c, err := r.Cookie(h.cfg.CSRFCookieName)
	if err != nil {
		return false
	}
	return secureStringEqual(
		strings.TrimSpace(c.Value),
		strings.TrimSpace(r.Header.Get(h.cfg.CSRFHeaderName)),
	)
}

// writeCookie applies the configured scope to every session cookie.
// An expiry at the unix epoch clears the cookie.
func (h *Handler) writeCookie(w http.ResponseWriter, name, value string, exp time.Time, httpOnly bool) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: httpOnly,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

func secureStringEqual(a, b string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
