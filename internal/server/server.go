// Package server provides the ResuAI HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resuai/internal/drafts"
	"github.com/jonathan/resuai/internal/logger"
	"github.com/jonathan/resuai/internal/portfolio"
	"github.com/jonathan/resuai/internal/server/ratelimit"
)

// Deps are the collaborators the handlers use. Users, Portfolios, Sessions,
// Builder and Drafts are required to serve their routes.
type Deps struct {
	Users      DBClient
	Portfolios portfolio.Store
	Sessions   *portfolio.Sessions
	Builder    *portfolio.Builder
	Drafts     *drafts.Service
	JWT        *JWTService
	Passwords  PasswordHasher
	Limiter    *ratelimit.Limiter
	Metrics    *Metrics
	Log        *logger.Logger
	// Ping reports readiness of backing stores for /health. Optional.
	Ping func(ctx context.Context) error
}

// PasswordHasher hashes and verifies passwords. *config.PasswordConfig implements it.
type PasswordHasher interface {
	HashPassword(pw string) (string, error)
	VerifyPassword(pw, storedHash string) bool
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	deps        Deps
	log         *logger.Logger
	validator   *validator.Validate
	userService *UserService
	authHandler *AuthHandler
	handler     http.Handler
}

// New creates a server listening on port with the given collaborators.
func New(port int, deps Deps) (*Server, error) {
	if deps.JWT == nil {
		return nil, errors.New("jwt service is required")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}

	s := &Server{
		deps:      deps,
		log:       deps.Log.With("component", "http"),
		validator: validator.New(),
	}

	if deps.Users != nil && deps.Passwords != nil {
		userService, err := NewUserService(deps.Users, deps.Passwords)
		if err != nil {
			return nil, err
		}
		s.userService = userService
		s.authHandler = NewAuthHandler(userService, deps.JWT, s)
	}

	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Model calls are slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.deps.Metrics.Handler())

	if s.authHandler != nil {
		mux.HandleFunc("POST /v1/auth/register", s.authHandler.Register)
		mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)
		mux.HandleFunc("PUT /v1/auth/password", s.requireSession(s.authHandler.UpdatePassword))
		mux.HandleFunc("GET /v1/users/me", s.requireSession(s.authHandler.Me))
	}

	mux.HandleFunc("POST /v1/portfolio/build", s.requireSession(s.handleBuildPortfolio))
	mux.HandleFunc("GET /v1/portfolio", s.requireSession(s.handleGetPortfolio))
	mux.HandleFunc("PUT /v1/portfolio", s.requireSession(s.handlePutPortfolio))
	mux.HandleFunc("POST /v1/portfolio/picture", s.requireSession(s.handleUploadPicture))
	mux.HandleFunc("POST /v1/portfolio/edit", s.requireSession(s.handleBeginEdit))
	mux.HandleFunc("GET /v1/portfolio/edit", s.requireSession(s.handleGetEdit))
	mux.HandleFunc("PATCH /v1/portfolio/edit", s.requireSession(s.handleApplyEdit))
	mux.HandleFunc("POST /v1/portfolio/edit/save", s.requireSession(s.handleSaveEdit))
	mux.HandleFunc("DELETE /v1/portfolio/edit", s.requireSession(s.handleCancelEdit))

	mux.HandleFunc("POST /v1/drafts", s.requireSession(s.handleUploadDraft))
	mux.HandleFunc("GET /v1/drafts/current", s.requireSession(s.handleGetDraft))
	mux.HandleFunc("DELETE /v1/drafts/current", s.requireSession(s.handleDeleteDraft))
	mux.HandleFunc("POST /v1/drafts/current/messages", s.requireSession(s.handleDraftChat))
	mux.HandleFunc("GET /v1/drafts/current/preview.pdf", s.requireSession(s.handleDraftPreview))
	mux.HandleFunc("POST /v1/drafts/current/portfolio", s.requireSession(s.handleConvertDraft))

	return s.deps.Metrics.Middleware(s.withLogging(s.withCORS(s.withRateLimit(mux))))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.deps.Limiter.Stop()
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, If-Match")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.deps.Limiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs one line per request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := httpsnoop.CaptureMetrics(next, w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", stats.Code,
			"bytes", stats.Written,
			"duration_ms", stats.Duration.Milliseconds(),
			"remote", s.extractClientID(r),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			s.log.Warn("health check failed", "error", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status, logs server-side failures and writes a
// client-safe message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.errorResponse(w, status, publicMessage(err, status))
}

// extractClientID extracts the client identifier from the request.
// Only RemoteAddr is trusted; forwarded headers are ignored.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.Warn("rate limit exceeded", "path", r.URL.Path, "client", s.extractClientID(r), "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
