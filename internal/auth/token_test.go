// ABOUTME: Unit tests for JWT token verification and generation
// ABOUTME: Tests valid tokens, invalid tokens, and expired tokens

package auth

import (
	"errors"
	"testing"
	"time"
)

// testSecret is a 32-byte secret that meets MinSecretLength.
var testSecret = []byte("test-secret-key-for-jwt-signing!")

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	_, err := NewJWTVerifier([]byte("too-short"))
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewJWTVerifier() error = %v, want ErrSecretTooShort", err)
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	username := "alice"
	token, err := verifier.Generate(username, time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if got != username {
		t.Errorf("Verify() = %q, want %q", got, username)
	}
}

func TestJWTVerifier_InvalidToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt-token",
		},
		{
			name:  "malformed JWT",
			token: "header.payload.signature",
		},
		{
			name: "wrong secret",
			token: func() string {
				// Generate with different secret
				other, _ := NewJWTVerifier([]byte("a-completely-different-secret-32b"))
				token, _ := other.Generate("alice", time.Hour)
				return token
			}(),
		},
		{
			name: "tampered payload",
			token: func() string {
				token, _ := verifier.Generate("alice", time.Hour)
				return token[:len(token)-4] + "AAAA"
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			if err == nil {
				t.Error("Verify() should have returned an error")
			}
		})
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	// Generate a token that expired an hour ago
	token, err := verifier.Generate("alice", -time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}
