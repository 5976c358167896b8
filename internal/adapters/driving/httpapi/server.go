// Package httpapi exposes the ask pipeline over HTTP for the portal UI.
// It carries the public wire contract: POST /ask with the question
// payload, GET /health for liveness, and per-tenant token-bucket rate
// limiting in front of the gateway.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driving"
	"github.com/custodia-labs/eldin/internal/logger"
)

// Rate-limit defaults: requests per second and burst per tenant.
const (
	DefaultRatePerSecond = 5
	DefaultBurst         = 10
)

const shutdownTimeout = 10 * time.Second

// Server serves the gateway over HTTP.
type Server struct {
	ask   driving.AskService
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures the server.
type Option func(*Server)

// WithRateLimit overrides the per-tenant request rate and burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rate.Limit(rps)
		s.burst = burst
	}
}

// NewServer creates an HTTP server over the ask service.
func NewServer(ask driving.AskService, opts ...Option) *Server {
	s := &Server{
		ask:      ask,
		rps:      DefaultRatePerSecond,
		burst:    DefaultBurst,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Run serves on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	err := <-errCh
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type askRequest struct {
	Q      string `json:"q"`
	User   string `json:"user"`
	Tenant string `json:"tenant"`
}

type sourcePayload struct {
	Title       string `json:"title"`
	DocID       string `json:"docId"`
	Excerpt     string `json:"excerpt"`
	CitationURL string `json:"citationUrl"`
}

type metaPayload struct {
	TTFAMs       int64 `json:"ttfaMs"`
	ExcerptTotal int   `json:"excerptTotal"`
	Degraded     bool  `json:"degraded,omitempty"`
}

type askResponse struct {
	Answer  string          `json:"answer"`
	Sources []sourcePayload `json:"sources"`
	Meta    metaPayload     `json:"meta"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if !s.limiter(req.Tenant).Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		return
	}

	answer, err := s.ask.Ask(r.Context(), domain.Query{
		Text:   req.Q,
		User:   req.User,
		Tenant: req.Tenant,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		logger.Error("ask failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, toAskResponse(answer))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// limiter returns the tenant's token bucket, creating it on first use.
func (s *Server) limiter(tenant string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[tenant]
	if !ok {
		lim = rate.NewLimiter(s.rps, s.burst)
		s.limiters[tenant] = lim
	}
	return lim
}

func toAskResponse(a domain.Answer) askResponse {
	sources := make([]sourcePayload, 0, len(a.Sources))
	for _, src := range a.Sources {
		sources = append(sources, sourcePayload{
			Title:       src.Title,
			DocID:       src.DocID,
			Excerpt:     src.Excerpt,
			CitationURL: src.CitationURL,
		})
	}
	return askResponse{
		Answer:  a.Text,
		Sources: sources,
		Meta: metaPayload{
			TTFAMs:       a.Meta.TTFAMs,
			ExcerptTotal: a.Meta.ExcerptTotal,
			Degraded:     a.Meta.Degraded,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response: %v", err)
	}
}
