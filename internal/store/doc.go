// Package store provides persistent storage for messagely using SQLite.
//
// # Data Models
//
//   - User: credential record (username, bcrypt password hash) plus public
//     profile fields and join/last-login timestamps
//   - Message: text message between two users with sent/read timestamps
//
// The Store interface is implemented by SQLiteStore, which owns a single
// *sql.DB pool shared by all request handlers. The schema is created
// automatically on open. Timestamps are stored as RFC3339 UTC strings.
//
// Sentinel errors (ErrNotFound, ErrUsernameExists, ErrUnknownUser) let
// handlers map storage failures to HTTP status codes without inspecting
// driver errors.
package store
