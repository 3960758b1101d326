// ABOUTME: HTTP middleware chain for JWT authentication on API endpoints
// ABOUTME: Three composable checks: authenticate, require-login, require-matching-user

package auth

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with an authorization check.
type Middleware func(http.Handler) http.Handler

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "authorization header not found"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Authenticate creates an HTTP middleware that extracts and validates the
// bearer token, attaching the decoded Identity to the request context.
// Requests with a missing or invalid token are rejected with 401.
func Authenticate(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeUnauthorized(w, errMsg)
				return
			}

			username, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			id := &Identity{Username: username}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireLogin creates an HTTP middleware that rejects requests with no
// Identity attached. Must be used after Authenticate.
func RequireLogin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()) == nil {
				writeUnauthorized(w, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMatchingUser creates an HTTP middleware that rejects requests
// whose Identity does not match the {username} path value. A missing
// identity is treated as a normal authorization failure, not an error.
func RequireMatchingUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil || id.Username != r.PathValue("username") {
				writeUnauthorized(w, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Chain composes middlewares around a handler, outermost first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// writeUnauthorized writes a 401 JSON error response.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
