// Package server exposes session-bound subprocesses over HTTP.
//
// Every call on /mcp resolves a session from the X-MCP-Session-ID header,
// forwards the request body to that session's subprocess and answers with a
// single server-sent event carrying the reply (or a JSON-RPC error envelope).
// GET /health reports liveness without touching any session.
//
// The handler stack is assembled from small middlewares:
//   - bearer token authorization (see package auth)
//   - CORS headers and Origin validation
//
//	srv, _ := server.New(registry, server.WithAuthorizer(auth.NewBearer(token, log).Middleware))
//	log.Fatal(srv.HTTP(":8000").ListenAndServe())
package server
