// Package http exposes the bill-tracking JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smartdues/internal/auth"
	"smartdues/internal/middleware/authn"
	"smartdues/internal/middleware/ratelimit"
	"smartdues/internal/middleware/security"
	"smartdues/internal/middleware/trace"
	"smartdues/internal/services"
)

// Server wraps the router and its collaborators.
type Server struct {
	http.Server

	users   *services.UserService
	bills   *services.BillService
	limiter *ratelimit.Limiter
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, users *services.UserService, bills *services.BillService, jwtManager *auth.JWTManager) *Server {
	s := &Server{
		users:   users,
		bills:   bills,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	r := mux.NewRouter()
	r.Use(trace.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.withRateLimit)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	r.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/").Subrouter()
	api.Use(authn.RequireAuth(jwtManager, func(w http.ResponseWriter, r *http.Request, status int, err error) {
		writeErrorKind(w, status, kindUnauthorized, err.Error())
	}))
	api.HandleFunc("/bills", s.handleCreateBill).Methods(http.MethodPost)
	api.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}", s.handleGetBill).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}/pay", s.handleMarkPaid).Methods(http.MethodPost)
	api.HandleFunc("/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Stop releases server resources beyond the embedded Shutdown.
func (s *Server) Stop() {
	s.limiter.Stop()
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(trace.ClientIP(r)) {
			writeErrorKind(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
