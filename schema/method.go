package schema

import (
	"encoding/json"

	protoschema "github.com/viant/mcp-protocol/schema"
)

const (
	// MethodInitialize is the handshake method a session sends first.
	MethodInitialize = protoschema.MethodInitialize
)

// Envelope holds the only message fields the bridge looks at.
type Envelope struct {
	Method string `json:"method,omitempty"`
}

// PeekEnvelope decodes the identifying fields of a message; non-object messages yield an empty envelope.
func PeekEnvelope(data []byte) Envelope {
	var envelope Envelope
	_ = json.Unmarshal(data, &envelope)
	return envelope
}

// IsHandshake reports whether the message is an initialize request.
func IsHandshake(message []byte) bool {
	return PeekEnvelope(message).Method == MethodInitialize
}

// IsSuccess reports whether the reply carries a result member and no error.
func IsSuccess(reply []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(reply, &fields); err != nil {
		return false
	}
	if _, ok := fields["result"]; !ok {
		return false
	}
	errorField, ok := fields["error"]
	return !ok || string(errorField) == "null"
}
