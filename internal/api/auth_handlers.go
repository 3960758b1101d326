// ABOUTME: Registration and login handlers for the authentication endpoints
// ABOUTME: Issues JWT tokens via the X-Auth-Token response header

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/2389/messagely/internal/store"
)

// handleRegister creates a new user account and issues a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &store.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		JoinAt:       time.Now().UTC(),
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		s.writeStoreError(w, err, "user not found")
		return
	}

	token, err := s.verifier.Generate(user.Username, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "username", user.Username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("registered user", "username", user.Username)
	w.Header().Set("X-Auth-Token", token)
	writeJSON(w, http.StatusCreated, profileResponse(user.Profile()))
}

// handleLogin verifies credentials and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := s.store.GetUserCredentials(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a bcrypt comparison so unknown usernames take as long
			// as wrong passwords.
			s.hasher.VerifyDummy(req.Password)
			writeError(w, http.StatusUnauthorized, "Invalid username/password")
			return
		}
		s.logger.Error("failed to load credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !s.hasher.Verify(req.Password, hash) {
		writeError(w, http.StatusUnauthorized, "Invalid username/password")
		return
	}

	if err := s.store.UpdateLastLogin(r.Context(), req.Username); err != nil {
		s.logger.Error("failed to update last login", "error", err, "username", req.Username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := s.verifier.Generate(req.Username, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "username", req.Username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("user logged in", "username", req.Username)
	w.Header().Set("X-Auth-Token", token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Authenticated"})
}
