// Package main provides a CI-friendly smoke test for the authd HTTP API.
//
// It validates:
//   - register -> login issues a token pair
//   - bearer access to /me
//   - refresh mints a new access token without rotating the refresh token
//   - logout revokes the refresh token
//   - refresh after logout is rejected
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type session struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "authd base URL")
		email    = flag.String("email", "", "account email (default: unique per run)")
		password = flag.String("password", "smoke-test-password", "account password")
		timeout  = flag.Duration("timeout", 7*time.Second, "per-request timeout")
		verbose  = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()

	if _, err := url.ParseRequestURI(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	acct := *email
	if acct == "" {
		acct = fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())
	}

	c := &client{
		base:    *baseURL,
		http:    &http.Client{Timeout: *timeout},
		verbose: *verbose,
	}

	// Register. 409 is fine when reusing an explicit -email across runs.
	status, _, err := c.post("/user/register", map[string]string{"email": acct, "password": *password}, "")
	if err != nil {
		fatalf("register: %v", err)
	}
	if status != http.StatusCreated && status != http.StatusConflict {
		fatalf("register: unexpected status %d", status)
	}

	var login struct {
		User    user    `json:"user"`
		Session session `json:"session"`
	}
	status, body, err := c.post("/auth/login", map[string]string{"email": acct, "password": *password}, "")
	if err != nil || status != http.StatusOK {
		fatalf("login: status=%d err=%v", status, err)
	}
	mustDecode(body, &login)
	if login.Session.AccessToken == "" || login.Session.RefreshToken == "" {
		fatalf("login: missing tokens in response")
	}
	c.logf("login ok: user=%s", login.User.ID)

	var me struct {
		User user `json:"user"`
	}
	status, body, err = c.get("/me", login.Session.AccessToken)
	if err != nil || status != http.StatusOK {
		fatalf("me: status=%d err=%v", status, err)
	}
	mustDecode(body, &me)
	if me.User.ID != login.User.ID {
		fatalf("me: user mismatch %q vs %q", me.User.ID, login.User.ID)
	}
	c.logf("me ok: %s", me.User.Email)

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	status, body, err = c.post("/auth/refresh", map[string]string{"refresh_token": login.Session.RefreshToken}, "")
	if err != nil || status != http.StatusOK {
		fatalf("refresh: status=%d err=%v", status, err)
	}
	mustDecode(body, &refreshed)
	if refreshed.AccessToken == "" {
		fatalf("refresh: missing access token")
	}
	c.logf("refresh ok")

	status, _, err = c.post("/auth/logout", map[string]string{"refresh_token": login.Session.RefreshToken}, "")
	if err != nil || status != http.StatusNoContent {
		fatalf("logout: status=%d err=%v", status, err)
	}
	c.logf("logout ok")

	status, _, err = c.post("/auth/refresh", map[string]string{"refresh_token": login.Session.RefreshToken}, "")
	if err != nil {
		fatalf("refresh after logout: %v", err)
	}
	if status != http.StatusUnauthorized {
		fatalf("refresh after logout: expected 401, got %d", status)
	}

	fmt.Println("auth smoke: OK")
}

type client struct {
	base    string
	http    *http.Client
	verbose bool
}

func (c *client) logf(format string, args ...any) {
	if c.verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func (c *client) post(path string, payload any, bearer string) (int, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req)
}

func (c *client) get(path, bearer string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req)
}

func (c *client) do(req *http.Request) (int, []byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, body, nil
}

func mustDecode(body []byte, dst any) {
	if err := json.Unmarshal(body, dst); err != nil {
		fatalf("decode response: %v (body: %s)", err, body)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "auth smoke: "+format+"\n", args...)
	os.Exit(1)
}
