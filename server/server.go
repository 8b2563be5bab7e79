package server

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/viant/mcpbridge/session"
	"go.uber.org/zap"
)

const (
	// SessionHeader carries the session id in both directions.
	SessionHeader = "X-MCP-Session-ID"
	// HealthURI is the liveness endpoint.
	HealthURI = "/health"
	// MCPURI is the bridged JSON-RPC endpoint.
	MCPURI = "/mcp"
	// DefaultMaxBodyBytes bounds a request body.
	DefaultMaxBodyBytes = 10 << 20
)

// Resolver finds or creates the session a request belongs to.
type Resolver interface {
	Resolve(id string) (*session.Session, bool)
}

// Server represents the HTTP side of the bridge.
type Server struct {
	resolver     Resolver
	authorizer   Middleware
	cors         *Cors
	log          *zap.SugaredLogger
	maxBodyBytes int64
}

// Handler returns the routed handler with all middlewares applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET(HealthURI, s.health)

	var middlewareHandlers []Middleware
	if s.cors != nil {
		middlewareHandlers = append(middlewareHandlers, originValidationMiddleware(s.cors.AllowOrigins))
	}
	middlewareHandlers = append(middlewareHandlers, s.authorizer)
	mcp := ChainMiddlewareHandlers(http.HandlerFunc(s.serveMCP), middlewareHandlers...)
	router.Handler(http.MethodPost, MCPURI, mcp)
	router.Handler(http.MethodGet, MCPURI, mcp)

	if s.cors == nil {
		return router
	}
	return s.cors.Middleware(router)
}

// HTTP creates an http.Server listening on addr.
func (s *Server) HTTP(addr string) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
}

// New creates a Server instance
func New(resolver Resolver, options ...Option) (*Server, error) {
	if resolver == nil {
		return nil, errors.New("session resolver was nil")
	}
	s := &Server{
		resolver:     resolver,
		log:          zap.NewNop().Sugar(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}
