package client

import "net/http"

// Option represents option
type Option func(c *Client)

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithSessionID resumes an existing session.
func WithSessionID(id string) Option {
	return func(c *Client) {
		c.sessionID = id
	}
}
