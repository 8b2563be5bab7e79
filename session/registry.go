package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/mcpbridge/internal/collection"
	"github.com/viant/mcpbridge/stdio"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry maps session ids to sessions.
type Registry struct {
	sessions   *collection.SyncMap[string, *Session]
	newChannel NewChannel
	log        *zap.SugaredLogger
}

// RegistryOption configures a Registry.
type RegistryOption func(r *Registry)

// WithLogger sets the registry logger, inherited by its sessions.
func WithLogger(log *zap.SugaredLogger) RegistryOption {
	return func(r *Registry) {
		r.log = log
	}
}

// WithNewChannel overrides how session channels are created.
func WithNewChannel(newChannel NewChannel) RegistryOption {
	return func(r *Registry) {
		r.newChannel = newChannel
	}
}

// NewRegistry creates a registry whose sessions spawn config's command.
func NewRegistry(config *stdio.Config, options ...RegistryOption) *Registry {
	ret := &Registry{
		sessions: collection.NewSyncMap[string, *Session](),
		log:      zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.newChannel == nil {
		channelLog := ret.log.Desugar().Named("stdio").Sugar()
		ret.newChannel = func(sessionID string) Channel {
			return stdio.New(config, stdio.WithLogger(channelLog.With("session", sessionID)))
		}
	}
	return ret
}

// Resolve returns the session registered under id, creating it when unknown.
// An empty id gets a freshly generated one. The bool reports creation.
func (r *Registry) Resolve(id string) (*Session, bool) {
	if id == "" {
		id = uuid.NewString()
	}
	aSession, created := r.sessions.GetOrCreate(id, func() *Session {
		return newSession(id, r.newChannel, r.log)
	})
	if created {
		r.log.Infow("session created", "session", id)
	}
	return aSession, created
}

// Sessions returns a snapshot of all sessions.
func (r *Registry) Sessions() []*Session {
	return r.sessions.Values()
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Close cleans up every session's subprocess concurrently.
func (r *Registry) Close(ctx context.Context) error {
	sessions := r.Sessions()
	errs := make([]error, len(sessions))
	group, ctx := errgroup.WithContext(ctx)
	for i, aSession := range sessions {
		group.Go(func() error {
			if err := aSession.Close(ctx); err != nil {
				errs[i] = fmt.Errorf("close session %v: %w", aSession.ID(), err)
			}
			return nil
		})
	}
	_ = group.Wait()
	r.log.Infow("sessions closed", "count", len(sessions))
	return errors.Join(errs...)
}
