// Package auth provides authentication and authorization for messagely.
//
// # Credentials
//
// Passwords are hashed with bcrypt via PasswordHasher. The work factor is
// fixed at construction time (configured via auth.bcrypt_cost). Hashes are
// one-way; Verify recomputes against the salt and cost embedded in the
// stored hash.
//
// # Tokens
//
// Clients authenticate with JWT tokens signed with HS256 using the
// configured jwt_secret:
//
//	verifier, err := NewJWTVerifier(secret)
//	token, err := verifier.Generate(username, ttl)
//	username, err := verifier.Verify(token)
//
// Tokens carry the username in the "sub" claim plus "iat"/"exp". They are
// never persisted server-side; a token is invalidated only by expiry or
// secret rotation.
//
// # Middleware
//
// Three composable HTTP middlewares gate routes:
//
//   - Authenticate: decodes the bearer token and attaches an Identity to
//     the request context. Rejects requests with a missing or invalid token.
//   - RequireLogin: rejects requests with no Identity attached.
//   - RequireMatchingUser: rejects requests whose Identity does not match
//     the {username} path value.
//
// Routes select the subset they need and compose them in order.
package auth
