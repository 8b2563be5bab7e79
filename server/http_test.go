package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcpbridge/internal/fakeproc"
)

func postOverHTTP(t *testing.T, httpServer *httptest.Server, sessionID, body string) (*http.Response, string) {
	t.Helper()
	request, err := http.NewRequest(http.MethodPost, httpServer.URL+MCPURI, strings.NewReader(body))
	require.NoError(t, err)
	if sessionID != "" {
		request.Header.Set(SessionHeader, sessionID)
	}
	response, err := httpServer.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	frame, err := bufio.NewReader(response.Body).ReadString('\n')
	require.NoError(t, err)
	return response, frame
}

func TestServer_RoundTripOverHTTP(t *testing.T) {
	handler, _ := newTestHandler(t, fakeConfig(fakeproc.ModeEcho))
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	response, frame := postOverHTTP(t, httpServer, "", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "text/event-stream", response.Header.Get("Content-Type"))
	assert.Equal(t, "data: {\"jsonrpc\":\"2.0\",\"id\":1,\"result\":\"pong\"}\n", frame)
	sessionID := response.Header.Get(SessionHeader)
	require.NotEmpty(t, sessionID)

	// a body larger than any read-ahead buffer is still read in full after the headers went out
	padding := strings.Repeat("x", 256*1024)
	_, frame = postOverHTTP(t, httpServer, sessionID, fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"padding":%q}}`, padding))
	var reply struct {
		ID     int             `json:"id"`
		Result fakeproc.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(frame), "data: ")), &reply))
	assert.Equal(t, 2, reply.ID)
	assert.Equal(t, "tools/call", reply.Result.Method)
	assert.Equal(t, 2, reply.Result.Seq)
}
