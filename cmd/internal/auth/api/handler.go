package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"authd/cmd/identity"
	"authd/cmd/internal/auth/session"
)

// EventRecorder receives auth outcome events, typically backed by metrics.
type EventRecorder interface {
	LoginSucceeded()
	LoginFailed(reason string)
	RefreshSucceeded()
	RefreshFailed(reason string)
	TokensRevoked(n int64)
}

// NoopEventRecorder discards all events.
type NoopEventRecorder struct{}

func (NoopEventRecorder) LoginSucceeded()      {}
func (NoopEventRecorder) LoginFailed(string)   {}
func (NoopEventRecorder) RefreshSucceeded()    {}
func (NoopEventRecorder) RefreshFailed(string) {}
func (NoopEventRecorder) TokensRevoked(int64)  {}

// Handler wires HTTP auth endpoints to identity/session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	users     identity.Store
	sessions  *session.Service
	validator *session.Validator
	events    EventRecorder
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithEventRecorder overrides the default no-op event recorder.
func WithEventRecorder(rec EventRecorder) HandlerOption {
	return func(h *Handler) {
		if h == nil || rec == nil {
			return
		}
		h.events = rec
	}
}

// NewHandler constructs an auth Handler over the given stores and services.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, sessions *session.Service, validator *session.Validator, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil || sessions == nil || validator == nil {
		return nil, errors.New("auth: nil dependency")
	}

	h := &Handler{
		log:       log,
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		validator: validator,
		events:    NoopEventRecorder{},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/logout_all", h.handleLogoutAll)
	mux.HandleFunc("/me", h.handleMe)
	mux.HandleFunc("/user/register", h.handleRegister)
	mux.HandleFunc("/user/list", h.handleUserList)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	password := req.Password
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	issued, err := h.sessions.Login(ctx, now, email, password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.events.LoginFailed("invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.events.LoginFailed("server_error")
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.events.LoginSucceeded()
	h.log.Info("auth.login.ok", "user_id", issued.User.ID, "ip", clientIP(r, h.cfg.TrustProxy))

	respSession := sessionResponse{
		AccessToken:      issued.AccessToken,
		AccessExpiresAt:  issued.AccessExp,
		RefreshToken:     issued.RefreshToken,
		RefreshExpiresAt: issued.RefreshExp,
	}
	if h.webCookiesEnabled() {
		if _, err := h.setWebSessionCookies(w, issued.RefreshToken, issued.RefreshExp); err != nil {
			h.log.Error("auth.login.web_cookie.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}
		respSession.RefreshToken = ""
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User:    toUserResponse(issued.User),
		Session: respSession,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := decodeOptionalJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	refreshToken := strings.TrimSpace(req.RefreshToken)
	fromCookie := false
	if cookieToken, ok := h.refreshTokenFromCookie(r); ok && refreshToken == "" {
		fromCookie = true
		refreshToken = cookieToken
	}
	if refreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}
	if fromCookie && !h.csrfDoubleSubmitValid(r) {
		writeError(w, http.StatusForbidden, "csrf_invalid", "missing or invalid csrf token")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	refreshed, err := h.sessions.Refresh(ctx, now, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshTokenExpired):
			h.events.RefreshFailed("expired")
			writeError(w, http.StatusUnauthorized, "refresh_token_expired", "refresh token expired")
		case errors.Is(err, session.ErrInvalidRefreshToken):
			h.events.RefreshFailed("invalid")
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "invalid refresh token")
		default:
			h.events.RefreshFailed("server_error")
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.events.RefreshSucceeded()

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:     refreshed.AccessToken,
		AccessExpiresAt: refreshed.AccessExp,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req logoutRequest
	if err := decodeOptionalJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	refreshToken := strings.TrimSpace(req.RefreshToken)
	if refreshToken == "" {
		if cookieToken, ok := h.refreshTokenFromCookie(r); ok {
			refreshToken = cookieToken
		}
	}

	// Revocation is idempotent: unknown and absent tokens succeed too.
	if err := h.sessions.Logout(r.Context(), refreshToken); err != nil {
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.clearWebSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	n, err := h.sessions.RevokeAll(r.Context(), id.ID)
	if err != nil {
		h.log.Error("auth.logout_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.events.TokensRevoked(n)
	h.log.Info("auth.logout_all.ok", "user_id", id.ID, "revoked", n)
	h.clearWebSessionCookies(w)
	writeJSON(w, http.StatusOK, logoutAllResponse{Revoked: n})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: userResponse{
		ID:        id.ID,
		Email:     id.Email,
		CreatedAt: id.CreatedAt,
	}})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.cfg.OpenRegistration {
		writeError(w, http.StatusForbidden, "registration_disabled", "registration is disabled")
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "password is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:    email,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "email already registered")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.log.Info("auth.register.ok", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, registerResponse{User: toUserResponse(u)})
}

func (h *Handler) handleUserList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.requireAuth(w, r); !ok {
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.log.Error("auth.user_list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, userListResponse{Users: out})
}

// ---- helpers ----

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	id, err := h.validator.Resolve(r.Context(), r.Header.Get("Authorization"), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrMissingCredential):
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		case errors.Is(err, session.ErrAccessTokenExpired):
			writeError(w, http.StatusUnauthorized, "token_expired", "access token expired")
		case errors.Is(err, session.ErrInvalidSignature), errors.Is(err, session.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		default:
			h.log.Error("auth.validate.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return session.Identity{}, false
	}
	return id, true
}
