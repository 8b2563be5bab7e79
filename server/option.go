package server

import (
	"fmt"

	"go.uber.org/zap"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithCORS enables CORS headers and Origin validation.
func WithCORS(cors *Cors) Option {
	return func(s *Server) error {
		s.cors = cors
		return nil
	}
}

// WithAuthorizer guards /mcp with the supplied middleware.
func WithAuthorizer(authorizer Middleware) Option {
	return func(s *Server) error {
		s.authorizer = authorizer
		return nil
	}
}

// WithLogger sets the server logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Server) error {
		if log == nil {
			return fmt.Errorf("logger was nil")
		}
		s.log = log
		return nil
	}
}

// WithMaxBodyBytes bounds the size of a request body.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) error {
		if limit <= 0 {
			return fmt.Errorf("invalid max body size: %v", limit)
		}
		s.maxBodyBytes = limit
		return nil
	}
}
