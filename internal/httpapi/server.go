// Package httpapi exposes the travel circle actions as a JSON API for the
// UI running on the same device.
package httpapi

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/companion"
	"github.com/safetrip/travel-circle/internal/metrics"
	"github.com/safetrip/travel-circle/internal/ratelimit"
	"github.com/safetrip/travel-circle/internal/tribe"
)

// Limiter counts an action by a client under rule. *ratelimit.Limiter
// satisfies it.
type Limiter interface {
	Take(ctx context.Context, identifier string, rule ratelimit.Rule) (ratelimit.Decision, error)
}

// Options configures the optional parts of the server.
type Options struct {
	Limiter     Limiter  // nil disables rate limiting
	CORSOrigins []string // defaults to "*"
}

// Server routes API requests to the domain services.
type Server struct {
	companions *companion.Service
	circles    *circle.Service
	tribes     *tribe.Service
	limiter    Limiter
	handler    http.Handler
}

// NewServer builds the routes.
func NewServer(companions *companion.Service, circles *circle.Service, tribes *tribe.Service, opts Options) *Server {
	s := &Server{
		companions: companions,
		circles:    circles,
		tribes:     tribes,
		limiter:    opts.Limiter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/match-requests", s.handleListMatchRequests)
	mux.HandleFunc("POST /api/match-requests", s.limited(ratelimit.RuleMatchRequest, s.handleRequestMatch))

	mux.HandleFunc("GET /api/circles", s.handleListCircles)
	mux.HandleFunc("POST /api/circles", s.limited(ratelimit.RuleCreate, s.handleSaveCircle))

	mux.HandleFunc("GET /api/groups", s.handleListGroups)
	mux.HandleFunc("POST /api/groups", s.limited(ratelimit.RuleCreate, s.handleCreateGroup))
	mux.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	mux.HandleFunc("POST /api/groups/{id}/join", s.limited(ratelimit.RuleJoinRequest, s.handleJoinGroup))
	mux.HandleFunc("GET /api/join-requests", s.handleListJoinRequests)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
	})
	s.handler = c.Handler(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// limited counts the request against rule, reports the quota in
// X-RateLimit-* headers and rejects it with 429 and Retry-After once the
// client has used it up. Limiter errors fail open.
func (s *Server) limited(rule ratelimit.Rule, next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		d, _ := s.limiter.Take(r.Context(), clientID(r), rule)

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("X-RateLimit-Reset", strconv.Itoa(seconds(d.ResetIn)))

		if !d.Allowed {
			h.Set("Retry-After", strconv.Itoa(seconds(d.ResetIn)))
			metrics.ActionsRejected.WithLabelValues("rate_limited").Inc()
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
			return
		}
		next(w, r)
	}
}

// seconds rounds d up to whole seconds, at least 1.
func seconds(d time.Duration) int {
	n := int(math.Ceil(d.Seconds()))
	if n < 1 {
		return 1
	}
	return n
}

func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
