package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/oklog/ulid/v2"
	"github.com/viant/jsonrpc"
	httpsession "github.com/viant/jsonrpc/transport/server/http/session"
	"github.com/viant/mcpbridge/schema"
	"github.com/viant/mcpbridge/stdio"
	"go.uber.org/zap"
)

var sessionLocation = httpsession.NewHeaderLocation(SessionHeader)

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// serveMCP forwards one JSON-RPC message to the session subprocess and
// streams back exactly one event.
func (s *Server) serveMCP(w http.ResponseWriter, r *http.Request) {
	requestID := ulid.Make().String()
	locator := httpsession.Locator{}
	sessionID, _ := locator.Locate(sessionLocation, r)
	aSession, created := s.resolver.Resolve(sessionID)
	log := s.log.With("request", requestID, "session", aSession.ID())
	log.Debugw("mcp call", "method", r.Method, "created", created)

	stream := openEventStream(w, aSession.ID())
	body, err := s.readBody(r)
	if err != nil {
		log.Debugw("invalid request body", "error", err)
		s.send(log, stream, schema.MarshalError(schema.NewInvalidRequest()))
		return
	}
	reply, err := aSession.Send(r.Context(), body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debugw("client went away", "error", err)
			return
		}
		log.Warnw("mcp call failed", "error", err, "pid", aSession.PID())
		s.send(log, stream, schema.MarshalError(asJSONRPCError(err)))
		return
	}
	s.send(log, stream, reply)
}

func (s *Server) send(log *zap.SugaredLogger, stream *eventStream, data []byte) {
	if err := stream.Send(data); err != nil {
		log.Debugw("failed to write event", "error", err)
	}
}

// readBody returns the request body when it is a non-empty JSON document within the size limit.
func (s *Server) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > s.maxBodyBytes {
		return nil, fmt.Errorf("body exceeds %v bytes", s.maxBodyBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyBody
	}
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	return data, nil
}

var (
	errEmptyBody   = errors.New("empty body")
	errInvalidJSON = errors.New("invalid JSON")
)

func asJSONRPCError(err error) *jsonrpc.Error {
	var timeoutErr *stdio.TimeoutError
	if errors.As(err, &timeoutErr) || errors.Is(err, context.DeadlineExceeded) {
		return schema.NewRequestTimeout()
	}
	return schema.NewInternalError(err)
}
