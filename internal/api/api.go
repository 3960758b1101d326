// ABOUTME: JSON request/response types and response helpers for the API
// ABOUTME: Provides the centralized error responder mapping store errors to status codes

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2389/messagely/internal/store"
)

// RegisterRequest is the JSON request body for POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest is the JSON request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileResponse is the public representation of a user.
type ProfileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserDetailResponse is the full representation of a user for GET /users/{username}.
type UserDetailResponse struct {
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       string  `json:"phone"`
	JoinAt      string  `json:"join_at"`
	LastLoginAt *string `json:"last_login_at"`
}

// CreateMessageRequest is the JSON request body for POST /messages.
type CreateMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// CreatedMessageResponse is the JSON shape for a newly sent message.
type CreatedMessageResponse struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	Body         string `json:"body"`
	SentAt       string `json:"sent_at"`
}

// MessageDetailResponse is the JSON shape for GET /messages/{id}.
type MessageDetailResponse struct {
	ID       int64           `json:"id"`
	Body     string          `json:"body"`
	SentAt   string          `json:"sent_at"`
	ReadAt   *string         `json:"read_at"`
	FromUser ProfileResponse `json:"from_user"`
	ToUser   ProfileResponse `json:"to_user"`
}

// ReceivedMessageResponse is the JSON shape for items in GET /users/{username}/to.
type ReceivedMessageResponse struct {
	ID       int64           `json:"id"`
	Body     string          `json:"body"`
	SentAt   string          `json:"sent_at"`
	ReadAt   *string         `json:"read_at"`
	FromUser ProfileResponse `json:"from_user"`
}

// SentMessageResponse is the JSON shape for items in GET /users/{username}/from.
type SentMessageResponse struct {
	ID     int64           `json:"id"`
	Body   string          `json:"body"`
	SentAt string          `json:"sent_at"`
	ReadAt *string         `json:"read_at"`
	ToUser ProfileResponse `json:"to_user"`
}

// MarkReadResponse is the JSON shape for POST /messages/{id}/read.
type MarkReadResponse struct {
	ID     int64  `json:"id"`
	ReadAt string `json:"read_at"`
}

// profileResponse converts a store profile to its JSON shape.
func profileResponse(p store.Profile) ProfileResponse {
	return ProfileResponse{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}

// formatTimestamp renders a timestamp for JSON responses.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatNullableTimestamp renders an optional timestamp, keeping JSON null
// for unset values.
func formatNullableTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

// decodeJSON parses a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps a store failure to an HTTP response. notFoundMsg is
// used for ErrNotFound; everything unrecognized becomes a 500 with the
// cause logged by the caller.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrUsernameExists):
		writeError(w, http.StatusConflict, "username taken")
	case errors.Is(err, store.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "recipient not found")
	default:
		s.logger.Error("store error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
