package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"identity/backend/internal/config"
	authusecase "identity/backend/internal/usecase/auth"
	endpointusecase "identity/backend/internal/usecase/endpoint"
	guardusecase "identity/backend/internal/usecase/guard"
	roleusecase "identity/backend/internal/usecase/role"
	tenantusecase "identity/backend/internal/usecase/tenant"
	tokenusecase "identity/backend/internal/usecase/token"
	userusecase "identity/backend/internal/usecase/user"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Auth      *authusecase.Service
	Tokens    *tokenusecase.Manager
	Guard     *guardusecase.Guard
	Tenants   *tenantusecase.Service
	Users     *userusecase.Service
	Roles     *roleusecase.Service
	Endpoints *endpointusecase.Service
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	services   Services
	addr       string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, services Services) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := withLogging(withCORS(mux, cfg.AllowedOrigins))

	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
		},
		router:   mux,
		services: services,
		addr:     addr,
	}
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying ServeMux so routes can be registered.
func (s *Server) Router() *http.ServeMux {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
