// Command mcp-bridge exposes a stdio JSON-RPC server over HTTP.
//
// Each client session, identified by the X-MCP-Session-ID header, gets its own
// subprocess; replies are returned as a single server-sent event.
package main
