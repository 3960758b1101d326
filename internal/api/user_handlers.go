// ABOUTME: Handlers for listing users, fetching user detail, and per-user message feeds
// ABOUTME: All routes here sit behind the authentication middleware chain

package api

import (
	"net/http"
)

// handleListUsers returns the public profile of every registered user.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}

	users := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, profileResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// handleGetUser returns full detail for a single user, including join and
// last-login timestamps.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.store.GetUser(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}

	resp := UserDetailResponse{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		JoinAt:      formatTimestamp(user.JoinAt),
		LastLoginAt: formatNullableTimestamp(user.LastLoginAt),
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": resp})
}

// handleMessagesTo returns messages received by the user in the path.
func (s *Server) handleMessagesTo(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	msgs, err := s.store.MessagesTo(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}

	out := make([]ReceivedMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ReceivedMessageResponse{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   formatTimestamp(m.SentAt),
			ReadAt:   formatNullableTimestamp(m.ReadAt),
			FromUser: profileResponse(m.From),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// handleMessagesFrom returns messages sent by the user in the path.
func (s *Server) handleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	msgs, err := s.store.MessagesFrom(r.Context(), username)
	if err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}

	out := make([]SentMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, SentMessageResponse{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: formatTimestamp(m.SentAt),
			ReadAt: formatNullableTimestamp(m.ReadAt),
			ToUser: profileResponse(m.To),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}
