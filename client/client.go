package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpbridge/server"
)

type request struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Client talks JSON-RPC to one bridge session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	seq        atomic.Uint64

	mu        sync.RWMutex
	sessionID string
}

// SessionID returns the session id assigned by the bridge, empty before the first call.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Health checks the bridge liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+server.HealthURI, nil)
	if err != nil {
		return err
	}
	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return &HTTPError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// Send posts a raw JSON-RPC message and returns the raw reply.
func (c *Client) Send(ctx context.Context, message json.RawMessage) (json.RawMessage, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+server.MCPURI, bytes.NewReader(message))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+c.token)
	}
	if sessionID := c.SessionID(); sessionID != "" {
		httpRequest.Header.Set(server.SessionHeader, sessionID)
	}
	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return nil, &HTTPError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if sessionID := response.Header.Get(server.SessionHeader); sessionID != "" {
		c.mu.Lock()
		c.sessionID = sessionID
		c.mu.Unlock()
	}
	return readEvent(response.Body)
}

// Call sends method with params and decodes the result into result when not nil.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	message, err := json.Marshal(&request{Jsonrpc: jsonrpc.Version, ID: c.seq.Add(1), Method: method, Params: params})
	if err != nil {
		return jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	reply, err := c.Send(ctx, message)
	if err != nil {
		return err
	}
	response := &jsonrpc.Response{}
	if err = json.Unmarshal(reply, response); err != nil {
		return jsonrpc.NewInternalError(fmt.Sprintf("failed to decode reply: %v", err), nil)
	}
	if response.Error != nil {
		return response.Error
	}
	if result == nil {
		return nil
	}
	if err = json.Unmarshal(response.Result, result); err != nil {
		return jsonrpc.NewInternalError(fmt.Sprintf("failed to decode result: %v", err), nil)
	}
	return nil
}

// Initialize runs the handshake; nil params use default client info.
func (c *Client) Initialize(ctx context.Context, params *schema.InitializeRequestParams) (*schema.InitializeResult, error) {
	if params == nil {
		params = &schema.InitializeRequestParams{
			ClientInfo:      schema.Implementation{Name: "mcp-bridge-client", Version: "0.1"},
			ProtocolVersion: schema.LatestProtocolVersion,
		}
	}
	return call[schema.InitializeRequestParams, schema.InitializeResult](ctx, c, schema.MethodInitialize, params)
}

func (c *Client) ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error) {
	params := &schema.ListToolsRequestParams{Cursor: cursor}
	return call[schema.ListToolsRequestParams, schema.ListToolsResult](ctx, c, schema.MethodToolsList, params)
}

func (c *Client) CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, error) {
	return call[schema.CallToolRequestParams, schema.CallToolResult](ctx, c, schema.MethodToolsCall, params)
}

func call[P any, R any](ctx context.Context, client *Client, method string, parameters *P) (*R, error) {
	var result R
	if err := client.Call(ctx, method, parameters, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// readEvent returns the payload of the first data event.
func readEvent(body io.Reader) (json.RawMessage, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), server.DefaultMaxBodyBytes)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(data) > 0 {
				break
			}
			continue
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(value, " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoEvent
	}
	return json.RawMessage(strings.Join(data, "\n")), nil
}

// New creates a client for the bridge at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, options ...Option) *Client {
	ret := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
