// Package auth protects the bridge HTTP endpoints with a shared bearer token.
//
// A Bearer with an empty token lets every request through; otherwise the
// request must carry "Authorization: Bearer <token>" with the exact token.
package auth
