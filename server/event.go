package server

import (
	"fmt"
	"net/http"
)

// eventStream writes server-sent events to one response.
type eventStream struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

// openEventStream sends the event-stream headers and flushes them before any reply is available.
// The body is read after the headers are flushed, which HTTP/1.x allows only in full duplex mode.
func openEventStream(w http.ResponseWriter, sessionID string) *eventStream {
	_ = http.NewResponseController(w).EnableFullDuplex()
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set(SessionHeader, sessionID)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	ret := &eventStream{writer: w, flusher: flusher}
	ret.flush()
	return ret
}

// Send writes data as one "data:" event.
func (e *eventStream) Send(data []byte) error {
	if _, err := fmt.Fprintf(e.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	e.flush()
	return nil
}

func (e *eventStream) flush() {
	if e.flusher != nil {
		e.flusher.Flush()
	}
}
