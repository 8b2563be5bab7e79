package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/viant/mcpbridge/schema"
	"github.com/viant/mcpbridge/stdio"
	"go.uber.org/zap"
)

// Channel is the subprocess channel a session drives.
type Channel interface {
	Start(ctx context.Context) error
	Send(ctx context.Context, message json.RawMessage) (json.RawMessage, error)
	Cleanup(ctx context.Context) error
	Alive() bool
	PID() int
	ExitError() error
}

// Compile-time verification that stdio.Channel implements Channel.
var _ Channel = (*stdio.Channel)(nil)

// NewChannel creates the channel of a session.
type NewChannel func(sessionID string) Channel

// Session is one logical dialogue backed by one subprocess.
type Session struct {
	id         string
	log        *zap.SugaredLogger
	newChannel NewChannel

	lock chan struct{} // capacity 1; held for the whole channel operation

	mu          sync.Mutex
	channel     Channel
	started     bool
	initialized bool
	restarts    int
}

type sendResult struct {
	reply json.RawMessage
	err   error
}

func newSession(id string, newChannel NewChannel, log *zap.SugaredLogger) *Session {
	return &Session{
		id:         id,
		log:        log.With("session", id),
		newChannel: newChannel,
		lock:       make(chan struct{}, 1),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Send forwards message to the session subprocess and returns its reply.
// Concurrent calls are serialized. A caller whose ctx is cancelled stops
// waiting, but the lock is only released once the channel operation resolves.
func (s *Session) Send(ctx context.Context, message json.RawMessage) (json.RawMessage, error) {
	select {
	case s.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	result := make(chan sendResult, 1)
	go func() {
		defer func() { <-s.lock }()
		reply, err := s.send(context.WithoutCancel(ctx), message)
		result <- sendResult{reply: reply, err: err}
	}()
	select {
	case r := <-result:
		return r.reply, r.err
	case <-ctx.Done():
		s.log.Debugw("caller abandoned pending send", "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (s *Session) send(ctx context.Context, message json.RawMessage) (json.RawMessage, error) {
	channel, err := s.ensureChannel(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := channel.Send(ctx, message)
	if err != nil {
		return nil, err
	}
	if schema.IsHandshake(message) && schema.IsSuccess(reply) {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		s.log.Debugw("session initialized", "pid", channel.PID())
	}
	return reply, nil
}

// ensureChannel creates the channel on first use and restarts it after its process exited.
func (s *Session) ensureChannel(ctx context.Context) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		s.channel = s.newChannel(s.id)
	}
	if s.channel.Alive() {
		return s.channel, nil
	}
	if s.started {
		s.restarts++
		// the new process has not seen the handshake
		s.initialized = false
		s.log.Warnw("subprocess exited, restarting", "previousPid", s.channel.PID(), "exitError", s.channel.ExitError(), "restarts", s.restarts)
	}
	if err := s.channel.Start(ctx); err != nil {
		return nil, err
	}
	s.started = true
	return s.channel, nil
}

// Initialized reports whether the current subprocess completed the initialize handshake.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Restarts returns how many times a dead subprocess was replaced.
func (s *Session) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// PID returns the subprocess id, or 0 before the first send.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		return 0
	}
	return s.channel.PID()
}

// Close terminates the subprocess without waiting for an in-flight send.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()
	if channel == nil {
		return nil
	}
	return channel.Cleanup(ctx)
}
