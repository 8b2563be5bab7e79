package schema

import (
	"encoding/json"

	"github.com/viant/jsonrpc"
)

const (
	// RequestTimeout is reported when the subprocess does not reply in time.
	RequestTimeout = -32000
)

// ErrorEnvelope is a JSON-RPC error message without a request id.
type ErrorEnvelope struct {
	Jsonrpc string         `json:"jsonrpc"`
	Error   *jsonrpc.Error `json:"error"`
}

// NewInvalidRequest creates an invalid request error
func NewInvalidRequest() *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.InvalidRequest, "Invalid Request", nil)
}

// NewRequestTimeout creates a request timeout error
func NewRequestTimeout() *jsonrpc.Error {
	return jsonrpc.NewError(RequestTimeout, "Request timeout", nil)
}

// NewInternalError creates an internal error carrying a human-readable cause
func NewInternalError(cause error) *jsonrpc.Error {
	message := "Internal error"
	if cause != nil {
		message += ": " + cause.Error()
	}
	return jsonrpc.NewError(jsonrpc.InternalError, message, nil)
}

// MarshalError encodes err into an error envelope.
func MarshalError(err *jsonrpc.Error) []byte {
	data, marshalErr := json.Marshal(&ErrorEnvelope{Jsonrpc: jsonrpc.Version, Error: err})
	if marshalErr != nil {
		// jsonrpc.Error only carries plain values; this is not expected to happen
		return []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"Internal error"}}`)
	}
	return data
}
