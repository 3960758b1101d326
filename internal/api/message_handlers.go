// ABOUTME: Handlers for sending, reading, and marking messages as read
// ABOUTME: Enforces sender/recipient visibility beyond what middleware can express

package api

import (
	"net/http"
	"strconv"

	"github.com/2389/messagely/internal/auth"
)

// handleCreateMessage sends a message from the authenticated user.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ToUsername == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "to_username and body are required")
		return
	}

	msg, err := s.store.CreateMessage(r.Context(), identity.Username, req.ToUsername, req.Body)
	if err != nil {
		s.writeStoreError(w, err, "recipient not found")
		return
	}

	s.logger.Info("message sent", "id", msg.ID, "from", identity.Username, "to", req.ToUsername)
	resp := CreatedMessageResponse{
		ID:           msg.ID,
		FromUsername: msg.From.Username,
		ToUsername:   msg.To.Username,
		Body:         msg.Body,
		SentAt:       formatTimestamp(msg.SentAt),
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": resp})
}

// handleGetMessage returns a message's detail. Only the sender or the
// recipient may view it.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	msg, err := s.store.GetMessage(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "message not found")
		return
	}

	if identity.Username != msg.From.Username && identity.Username != msg.To.Username {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp := MessageDetailResponse{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   formatTimestamp(msg.SentAt),
		ReadAt:   formatNullableTimestamp(msg.ReadAt),
		FromUser: profileResponse(msg.From),
		ToUser:   profileResponse(msg.To),
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": resp})
}

// handleMarkRead records a read receipt. Only the recipient may mark a
// message read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	recipient, err := s.store.GetMessageRecipient(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "message not found")
		return
	}
	if identity.Username != recipient {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	msg, err := s.store.MarkMessageRead(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "message not found")
		return
	}

	resp := MarkReadResponse{
		ID:     msg.ID,
		ReadAt: formatTimestamp(*msg.ReadAt),
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": resp})
}
