package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dmrelay/internal/dispatch"
)

// Server is the HTTP-facing entry point of the relay.
type Server struct {
	config     Config
	validator  CredentialValidator
	dispatcher Dispatcher
	enumerator Enumerator
	logger     *slog.Logger
	server     *http.Server
}

// New creates a new webhook server instance.
func New(config Config, validator CredentialValidator, dispatcher Dispatcher, enumerator Enumerator, logger *slog.Logger) *Server {
	return &Server{
		config:     config,
		validator:  validator,
		dispatcher: dispatcher,
		enumerator: enumerator,
		logger:     logger,
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Liveness probe, unauthenticated.
	r.Get("/", s.handleRoot)

	// Everything else requires credentials before any other work happens.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/webhook", s.handleWebhook)
		r.Get("/fetch_member_ids", s.handleFetchMemberIDs)
	})

	return r
}

// loggingMiddleware logs HTTP requests (excludes sensitive payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// authMiddleware rejects requests that fail credential validation. It runs
// before any payload parsing or roster access and has no side effects on
// failure.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.validator.Validate(r.Header.Get("Authorization")) {
			s.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleRoot is the liveness probe.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "dmrelay up")
}

// handleWebhook accepts a delivery request and schedules it. The 200
// response is a receipt acknowledgment, not a delivery confirmation:
// delivery happens after the response, and its outcome is only logged.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	s.dispatcher.Dispatch(dispatch.Request{
		UserID:  string(req.UserID),
		GuildID: string(req.GuildID),
		Message: req.Message,
	})

	s.respondJSON(w, http.StatusOK, acceptedResponse{Status: "accepted"})
}

// handleFetchMemberIDs returns the full member id list of the configured
// guild. Unlike dispatch this path is synchronous: the response waits for
// the enumeration.
func (s *Server) handleFetchMemberIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.enumerator.Enumerate(r.Context(), s.config.GuildID)
	if err != nil {
		s.logger.Error("member enumeration failed", "guild_id", s.config.GuildID, "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.respondJSON(w, http.StatusOK, memberIDsResponse{MemberIDs: ids})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
