// Package mcpbridge exposes a stdio JSON-RPC server, such as an MCP server
// started with npx or python, over HTTP.
//
// The repository is organized as:
//   - stdio: one child process and its line-delimited JSON channel
//   - session: per-session subprocesses and the session registry
//   - server: the HTTP surface (/mcp and /health) with bearer authorization
//   - credential: base64 credential blobs written to a private temp file
//   - bridge: options, config file and lifecycle, used by cmd bridge/mcp-bridge
//   - client: a Go client for the HTTP surface
package mcpbridge
