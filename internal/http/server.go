// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SDhanushDev/fet/internal/core"
	"github.com/SDhanushDev/fet/internal/ledger"
)

// ReminderScheduler reschedules meal reminders when notification settings
// change. Optional; a nil scheduler disables rescheduling.
type ReminderScheduler interface {
	Schedule(ctx context.Context, settings core.NotificationSettings) error
}

type Server struct {
	http.Server
	svc         *ledger.Service
	reminders   ReminderScheduler
	exportDir   string
	rateLimiter *rateLimiter
	metrics     *securityMetrics
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *ledger.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(defaultRateLimit),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/wallet", s.withSecurityHeaders(s.handleGetWallet))
	mux.HandleFunc("POST /api/wallet/topup", s.withSecurityHeaders(s.handleTopUp))

	mux.HandleFunc("GET /api/logs", s.withSecurityHeaders(s.handleListLogs))
	mux.HandleFunc("POST /api/logs", s.withSecurityHeaders(s.handleCommitLog))
	mux.HandleFunc("GET /api/logs/today", s.withSecurityHeaders(s.handleTodayLog))
	mux.HandleFunc("GET /api/logs/{date}", s.withSecurityHeaders(s.handleLogForDate))

	mux.HandleFunc("GET /api/summary", s.withSecurityHeaders(s.handleSummary))

	mux.HandleFunc("GET /api/prices", s.withSecurityHeaders(s.handleGetPrices))
	mux.HandleFunc("PUT /api/prices", s.withSecurityHeaders(s.handleUpdatePrices))

	mux.HandleFunc("GET /api/plan", s.withSecurityHeaders(s.handleGetPlan))
	mux.HandleFunc("PUT /api/plan", s.withSecurityHeaders(s.handleSavePlan))

	mux.HandleFunc("GET /api/settings", s.withSecurityHeaders(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withSecurityHeaders(s.handleSaveSettings))

	mux.HandleFunc("GET /api/export/csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("POST /api/export/file", s.withSecurityHeaders(s.handleExportFile))
	mux.HandleFunc("POST /api/reset", s.withSecurityHeaders(s.handleReset))

	return s
}

// WithReminderScheduler attaches a scheduler that is rescheduled whenever
// notification settings are saved.
func (s *Server) WithReminderScheduler(r ReminderScheduler) *Server {
	s.reminders = r
	return s
}

// WithExportDir sets the directory file exports are written to.
func (s *Server) WithExportDir(dir string) *Server {
	s.exportDir = dir
	return s
}

// WithRateLimit overrides the per-minute request budget applied to
// mutating requests.
func (s *Server) WithRateLimit(perMinute int) *Server {
	s.rateLimiter.stop()
	s.rateLimiter = newRateLimiter(perMinute)
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	return s.Server.Shutdown(ctx)
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected", "client_ip", clientIP, "url", r.URL.String())
		}

		// Apply rate limiting to mutating requests
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Capture the status code for logging
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
