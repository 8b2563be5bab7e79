package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/viant/afs"
	"github.com/viant/mcpbridge/credential"
	"github.com/viant/mcpbridge/server"
	"github.com/viant/mcpbridge/server/auth"
	"github.com/viant/mcpbridge/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service owns the bridge resources: credentials, sessions and the HTTP server.
type Service struct {
	options     *Options
	log         *zap.SugaredLogger
	credentials *credential.File
	registry    *session.Registry
	server      *server.Server
}

// Registry returns the session registry.
func (s *Service) Registry() *session.Registry {
	return s.registry
}

// Handler returns the HTTP handler.
func (s *Service) Handler() http.Handler {
	return s.server.Handler()
}

// ListenAndServe serves on the configured address until ctx is done, then shuts down.
func (s *Service) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.options.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %v: %w", s.options.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down.
func (s *Service) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := s.server.HTTP(listener.Addr().String())
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.log.Infow("bridge listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		s.log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.GracePeriod+s.options.Timeout)
		defer cancel()
		return errors.Join(httpServer.Shutdown(shutdownCtx), s.Shutdown(shutdownCtx))
	})
	return group.Wait()
}

// Shutdown stops every session subprocess and removes the credentials file.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.registry.Close(ctx)
	if removeErr := s.credentials.Remove(ctx); removeErr != nil {
		err = errors.Join(err, removeErr)
	} else if s.credentials != nil {
		s.log.Infow("credentials removed", "path", s.credentials.Path())
	}
	return err
}

// New creates a bridge service.
func New(ctx context.Context, options *Options, log *zap.SugaredLogger) (*Service, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var config *Config
	if options.ConfigURL != "" {
		var err error
		if config, err = LoadConfig(ctx, afs.New(), options.ConfigURL); err != nil {
			return nil, err
		}
	}
	stdioConfig := options.stdioConfig(config)
	if err := stdioConfig.Validate(); err != nil {
		return nil, err
	}
	credentials, err := credential.Materialize(ctx, options.Credentials, options.CredentialDir)
	if err != nil {
		return nil, err
	}
	if credentials != nil {
		options.withCredential(stdioConfig, credentials)
		log.Infow("credentials materialized", "path", credentials.Path())
	}

	if options.AuthToken == "" {
		log.Warnw("no auth token configured, /mcp accepts unauthenticated requests")
	}
	registry := session.NewRegistry(stdioConfig, session.WithLogger(log.Desugar().Named("session").Sugar()))
	serverOptions := []server.Option{
		server.WithLogger(log.Desugar().Named("server").Sugar()),
		server.WithMaxBodyBytes(options.MaxBodyBytes),
		server.WithAuthorizer(auth.NewBearer(options.AuthToken, log.Desugar().Named("auth").Sugar()).Middleware),
	}
	if cors := options.cors(config); cors != nil {
		serverOptions = append(serverOptions, server.WithCORS(cors))
	}
	srv, err := server.New(registry, serverOptions...)
	if err != nil {
		_ = credentials.Remove(ctx)
		return nil, err
	}
	log.Infow("bridge configured", "command", stdioConfig.Command, "args", stdioConfig.Args, "timeout", stdioConfig.Timeout)
	return &Service{
		options:     options,
		log:         log,
		credentials: credentials,
		registry:    registry,
		server:      srv,
	}, nil
}
