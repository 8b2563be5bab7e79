// Package client implements a Go client for the bridge HTTP endpoint.
//
// The client keeps the session id assigned by the bridge and sends it on every
// following call, so all calls of one Client reach the same subprocess. Replies
// arrive as a single server-sent event which the client unwraps.
//
// Example:
//
//	cli := client.New("http://localhost:8000", client.WithToken(token))
//	result, _ := cli.Initialize(ctx, nil)
//	tools, _ := cli.ListTools(ctx, nil)
package client
