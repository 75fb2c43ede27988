package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"legalgpt/internal/ratelimit"
	"legalgpt/internal/util"
	"legalgpt/pkg/domain"
	"legalgpt/services/api/internal/app"
	"legalgpt/services/api/internal/security"
)

const (
	maxJSONBodyBytes      = 1 << 20
	defaultMaxUploadBytes = 10 << 20
	rateWindow            = time.Minute
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App     *app.App
	Alerter *security.AuditAlerter
	// Redis backs the rate limiters so replicas share quotas. When nil each
	// process keeps its own token buckets.
	Redis          *redis.Client
	TrustedProxies *util.TrustedProxies
	CORSOrigins    []string

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	GuidanceRateLimitPerMinute int
	MaxUploadBytes             int64

	// Google enables /auth/oauth/google/*. Optional.
	Google *GoogleOAuth
	// DebugRoutes registers /debug/db-status.
	DebugRoutes bool
}

// Server exposes the LegalGPT HTTP API.
type Server struct {
	app             *app.App
	alerter         *security.AuditAlerter
	trusted         *util.TrustedProxies
	corsOrigins     []string
	mux             *http.ServeMux
	maxUploadBytes  int64
	registerLimiter ratelimit.Limiter
	loginLimiter    ratelimit.Limiter
	guidanceLimiter ratelimit.Limiter
	google          *GoogleOAuth
	debugRoutes     bool
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	newLimiter := func(name string, limit, fallback int) (ratelimit.Limiter, error) {
		if limit <= 0 {
			limit = fallback
		}
		if cfg.Redis == nil {
			return ratelimit.NewTokenBucketLimiter(limit, rateWindow), nil
		}
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.Redis, "legalgpt:ratelimit:"+name, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter, err := newLimiter("register", cfg.RegisterRateLimitPerMinute, 5)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", cfg.LoginRateLimitPerMinute, 10)
	if err != nil {
		return nil, err
	}
	guidanceLimiter, err := newLimiter("guidance", cfg.GuidanceRateLimitPerMinute, 20)
	if err != nil {
		return nil, err
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	s := &Server{
		app:             cfg.App,
		alerter:         cfg.Alerter,
		trusted:         cfg.TrustedProxies,
		corsOrigins:     cfg.CORSOrigins,
		mux:             http.NewServeMux(),
		maxUploadBytes:  maxUpload,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
		guidanceLimiter: guidanceLimiter,
		google:          cfg.Google,
		debugRoutes:     cfg.DebugRoutes,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.CORS(s.corsOrigins)(h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog(s.trusted, h)
	return util.WithRequestID(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	// auth
	s.mux.HandleFunc("/auth/register", s.handleRegister)
	s.mux.HandleFunc("/auth/login", s.handleLogin)
	s.mux.HandleFunc("/auth/logout", s.handleLogout)
	s.mux.Handle("/auth/me", s.authenticated(s.handleMe))
	s.mux.HandleFunc("/auth/oauth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/oauth/google/callback", s.handleGoogleCallback)

	// chat
	s.mux.Handle("/chat", s.authenticated(s.handleConversations))
	s.mux.Handle("/chat/{id}", s.authenticated(s.handleConversationByID))
	s.mux.Handle("/chat/{id}/messages", s.authenticated(s.handleMessages))

	// legal assistant
	s.mux.Handle("/legal/notices", s.authenticated(s.handleNotices))
	s.mux.Handle("/legal/notices/{id}", s.authenticated(s.handleNoticeByID))
	s.mux.Handle("/legal/notices/{id}/replies", s.authenticated(s.handleReplies))
	s.mux.Handle("/legal/notices/{id}/replies/{replyId}", s.authenticated(s.handleReplyByID))
	s.mux.Handle("/legal/documents", s.authenticated(s.handleDocuments))
	s.mux.Handle("/legal/documents/upload", s.authenticated(s.handleUploadDocument))
	s.mux.Handle("/legal/documents/{id}", s.authenticated(s.handleDocumentByID))
	s.mux.Handle("/legal/documents/{id}/original", s.authenticated(s.handleDocumentOriginal))
	s.mux.Handle("/legal/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/legal/query", s.authenticated(s.handleQuery))
	s.mux.Handle("/legal/data", s.authenticated(s.handleUserData))

	// public
	s.mux.HandleFunc("/legal/guidance", s.handleGuidance)
	s.mux.HandleFunc("/legal/countries", s.handleCountries)

	if s.debugRoutes {
		s.mux.Handle("/debug/db-status", s.authenticated(s.handleDBStatus))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if err := s.app.Ping(); err != nil {
		util.LoggerFromContext(r.Context()).Error("health check failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDBStatus reports row counts per table. Only row counts leave the
// server; no records are listed.
func (s *Server) handleDBStatus(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	counts, err := s.app.Stats()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "connected",
		"collections": counts,
	})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

// authenticated resolves the bearer token before next runs. Ownership of
// individual resources is checked by the app layer.
func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "access.authorize", security.OutcomeFail, "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, ok := s.app.UserFromToken(token)
		if !ok {
			s.audit(r, "access.authorize", security.OutcomeFail, "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := util.ContextWithLogger(r.Context(), util.LoggerFromContext(r.Context()).With("user_id", user.ID))
		next(w, r.WithContext(ctx), user)
	})
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: payload})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeAppError maps application errors to status codes. Upstream and store
// failures are logged and answered with a generic message.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, app.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrForbidden):
		s.audit(r, "access.forbidden", security.OutcomeDenied)
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, "Document archive is not configured")
	case errors.Is(err, app.ErrGuidanceUnavailable):
		util.LoggerFromContext(r.Context()).Error("legal guidance failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to get legal guidance")
	case errors.Is(err, app.ErrProvisioningFailed):
		util.LoggerFromContext(r.Context()).Error("oauth provisioning failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Sign-in failed")
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a request body into dst. An empty body decodes as {} when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		if allowEmpty {
			return nil
		}
		return &app.ValidationError{Message: "Request body is required"}
	}
	if err != nil {
		return &app.ValidationError{Message: "Invalid JSON body"}
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < len("Bearer ") || !strings.EqualFold(authHeader[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len("Bearer "):])
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	ip := util.ClientIP(r, s.trusted)
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ip,
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == security.OutcomeSuccess {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)

	result, err := s.alerter.Observe(event, outcome, ip)
	if err != nil {
		logger.Warn("security alert counter failed", "event", event, "err", err)
		return
	}
	if result.Triggered && result.Count == result.Threshold {
		logger.Error("security_alert",
			"event", event,
			"outcome", outcome,
			"ip", ip,
			"count", result.Count,
			"window", result.Window.String(),
		)
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter ratelimit.Limiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trusted)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
