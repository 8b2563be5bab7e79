package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	AuthorizationHeader   = "Authorization"
	WWWAuthenticateHeader = "WWW-Authenticate"
	bearerPrefix          = "bearer "
)

// Bearer is a shared-secret authorizer.
type Bearer struct {
	token []byte
	log   *zap.SugaredLogger
}

// Enabled reports whether a token is configured.
func (b *Bearer) Enabled() bool {
	return len(b.token) > 0
}

// Authorized reports whether the request carries the configured token.
func (b *Bearer) Authorized(r *http.Request) bool {
	if !b.Enabled() {
		return true
	}
	token, ok := BearerToken(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), b.token) == 1
}

// Middleware rejects unauthorized requests with 401 before they reach next.
func (b *Bearer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.Authorized(r) {
			b.log.Debugw("rejected unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set(WWWAuthenticateHeader, `Bearer realm="mcp-bridge"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get(AuthorizationHeader))
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// NewBearer creates a bearer authorizer; an empty token disables authorization.
func NewBearer(token string, log *zap.SugaredLogger) *Bearer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bearer{token: []byte(token), log: log}
}
