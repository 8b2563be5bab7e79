// Package bridge wires the HTTP bridge together: it parses options, loads the
// optional YAML config, materializes credentials, and serves the session
// registry over HTTP until the process is signalled.
//
// The command run per session is given as trailing arguments:
//
//	mcp-bridge --port 8000 --auth-token secret npx -y @modelcontextprotocol/server-filesystem /data
package bridge
