package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHandshake(t *testing.T) {
	assert.True(t, IsHandshake([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)))
	assert.False(t, IsHandshake([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	assert.False(t, IsHandshake([]byte(`[{"method":"initialize"}]`)))
	assert.False(t, IsHandshake([]byte(`42`)))
}

func TestIsSuccess(t *testing.T) {
	var testCases = []struct {
		description string
		reply       string
		expect      bool
	}{
		{description: "result", reply: `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`, expect: true},
		{description: "null result", reply: `{"jsonrpc":"2.0","id":1,"result":null}`, expect: true},
		{description: "error", reply: `{"jsonrpc":"2.0","id":1,"error":{"code":-1,"message":"x"}}`, expect: false},
		{description: "null error with result", reply: `{"jsonrpc":"2.0","id":1,"result":{},"error":null}`, expect: true},
		{description: "no result", reply: `{"jsonrpc":"2.0","id":1}`, expect: false},
		{description: "not an object", reply: `"result"`, expect: false},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, IsSuccess([]byte(testCase.reply)), testCase.description)
	}
}

func TestMarshalError(t *testing.T) {
	var testCases = []struct {
		description string
		payload     []byte
		code        int
		message     string
	}{
		{description: "invalid request", payload: MarshalError(NewInvalidRequest()), code: -32600, message: "Invalid Request"},
		{description: "timeout", payload: MarshalError(NewRequestTimeout()), code: -32000, message: "Request timeout"},
		{description: "internal", payload: MarshalError(NewInternalError(errors.New("boom"))), code: -32603, message: "Internal error: boom"},
	}
	for _, testCase := range testCases {
		var envelope struct {
			Jsonrpc string `json:"jsonrpc"`
			Error   struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(testCase.payload, &envelope), testCase.description)
		assert.Equal(t, "2.0", envelope.Jsonrpc, testCase.description)
		assert.Equal(t, testCase.code, envelope.Error.Code, testCase.description)
		assert.Equal(t, testCase.message, envelope.Error.Message, testCase.description)
	}
}
