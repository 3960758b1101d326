// Package api provides the HTTP/JSON surface for messagely.
//
// The Server owns the route table, composes the auth middleware chain per
// route, and translates store results into JSON responses. Handlers do no
// business logic beyond validating one parameter, running one store
// operation, and reshaping the result.
//
// # Routes
//
//	POST /auth/register          create a user, issue a token
//	POST /auth/login             verify credentials, issue a token
//	GET  /users                  list all users (login required)
//	GET  /users/{username}       user detail (matching identity required)
//	GET  /users/{username}/to    messages received (matching identity required)
//	GET  /users/{username}/from  messages sent (matching identity required)
//	GET  /messages/{id}          message detail (sender or recipient only)
//	POST /messages               send a message (login required)
//	POST /messages/{id}/read     mark read (recipient only)
//	GET  /health                 liveness
//	GET  /health/ready           readiness (store reachable)
//
// Tokens are returned in the X-Auth-Token response header and presented by
// clients as "Authorization: Bearer <token>".
//
// # Errors
//
// Every error response is a JSON object {"error": message}. Store sentinel
// errors map to 404/409, authorization failures to 401, malformed payloads
// to 400, and everything else to 500 with the cause logged, never leaked.
package api
