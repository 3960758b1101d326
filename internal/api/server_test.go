// ABOUTME: End-to-end handler tests exercising the full middleware chain
// ABOUTME: Uses a real sqlite store in a temp dir rather than mocks

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/messagely/internal/config"
	"github.com/2389/messagely/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Auth.JWTSecret = "test-secret-key-for-jwt-signing!"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.TokenTTL = time.Hour

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, st, logger)
	require.NoError(t, err)
	return srv
}

// doJSON performs a request against the server's handler and decodes the
// JSON response body into a generic map.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) (int, http.Header, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	decoded := map[string]any{}
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, rec.Result().Header, decoded
}

// register creates a user and returns the issued token.
func register(t *testing.T, srv *Server, username string) string {
	t.Helper()

	status, header, _ := doJSON(t, srv, "POST", "/auth/register", "", RegisterRequest{
		Username:  username,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+14155550000",
	})
	require.Equal(t, http.StatusCreated, status)
	token := header.Get("X-Auth-Token")
	require.NotEmpty(t, token)
	return token
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	status, header, body := doJSON(t, srv, "POST", "/auth/register", "", RegisterRequest{
		Username:  "alice",
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Anderson",
		Phone:     "+14155550101",
	})

	assert.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, header.Get("X-Auth-Token"))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "Alice", body["first_name"])
	assert.Equal(t, "Anderson", body["last_name"])
	assert.Equal(t, "+14155550101", body["phone"])
	assert.NotContains(t, body, "password")
	// The token travels only in the header, never the body.
	assert.NotContains(t, body, "token")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "POST", "/auth/register", "", RegisterRequest{
		Username: "alice",
		Password: "different",
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username taken", body["error"])
}

func TestRegister_MissingFields(t *testing.T) {
	srv := newTestServer(t)

	status, _, _ := doJSON(t, srv, "POST", "/auth/register", "", RegisterRequest{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = doJSON(t, srv, "POST", "/auth/register", "", RegisterRequest{Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	status, header, body := doJSON(t, srv, "POST", "/auth/login", "", LoginRequest{
		Username: "alice",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, header.Get("X-Auth-Token"))
	assert.Equal(t, "Authenticated", body["message"])
	assert.NotContains(t, body, "token")
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	status, header, body := doJSON(t, srv, "POST", "/auth/login", "", LoginRequest{
		Username: "alice",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Empty(t, header.Get("X-Auth-Token"))
	assert.Equal(t, "Invalid username/password", body["error"])
}

func TestLogin_UnknownUser(t *testing.T) {
	srv := newTestServer(t)

	status, _, body := doJSON(t, srv, "POST", "/auth/login", "", LoginRequest{
		Username: "ghost",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username/password", body["error"])
}

func TestLogin_UpdatesLastLogin(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/users/alice", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Nil(t, user["last_login_at"])

	status, _, _ = doJSON(t, srv, "POST", "/auth/login", "", LoginRequest{
		Username: "alice",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, status)

	status, _, body = doJSON(t, srv, "GET", "/users/alice", token, nil)
	require.Equal(t, http.StatusOK, status)
	user = body["user"].(map[string]any)
	assert.NotNil(t, user["last_login_at"])
}

func TestListUsers(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "bob")
	register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/users", token, nil)

	assert.Equal(t, http.StatusOK, status)
	users := body["users"].([]any)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].(map[string]any)["username"])
	assert.Equal(t, "bob", users[1].(map[string]any)["username"])
}

func TestListUsers_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	status, _, body := doJSON(t, srv, "GET", "/users", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authorization header not found", body["error"])
}

func TestGetUser_WrongIdentity(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	register(t, srv, "bob")

	status, _, _ := doJSON(t, srv, "GET", "/users/bob", aliceToken, nil)

	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetUser_TamperedToken(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/users/alice", token+"x", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid token", body["error"])
}

func TestCreateAndGetMessage(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	bobToken := register(t, srv, "bob")

	status, _, body := doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "bob",
		Body:       "hello bob",
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["message"].(map[string]any)
	assert.Equal(t, "alice", created["from_username"])
	assert.Equal(t, "bob", created["to_username"])
	assert.Equal(t, "hello bob", created["body"])
	id := int64(created["id"].(float64))

	// Both sender and recipient can view the full detail.
	for _, token := range []string{aliceToken, bobToken} {
		status, _, body = doJSON(t, srv, "GET", "/messages/"+itoa(id), token, nil)
		require.Equal(t, http.StatusOK, status)
		msg := body["message"].(map[string]any)
		assert.Equal(t, "hello bob", msg["body"])
		assert.Equal(t, "alice", msg["from_user"].(map[string]any)["username"])
		assert.Equal(t, "bob", msg["to_user"].(map[string]any)["username"])
		assert.Nil(t, msg["read_at"])
	}
}

func TestGetMessage_ThirdParty(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	register(t, srv, "bob")
	eveToken := register(t, srv, "eve")

	status, _, body := doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "bob",
		Body:       "private",
	})
	require.Equal(t, http.StatusCreated, status)
	id := int64(body["message"].(map[string]any)["id"].(float64))

	status, _, _ = doJSON(t, srv, "GET", "/messages/"+itoa(id), eveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateMessage_UnknownRecipient(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "ghost",
		Body:       "anyone there",
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "recipient not found", body["error"])
}

func TestMarkRead(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	bobToken := register(t, srv, "bob")

	status, _, body := doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "bob",
		Body:       "read me",
	})
	require.Equal(t, http.StatusCreated, status)
	id := int64(body["message"].(map[string]any)["id"].(float64))

	// Only the recipient may mark a message read.
	status, _, _ = doJSON(t, srv, "POST", "/messages/"+itoa(id)+"/read", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, body = doJSON(t, srv, "POST", "/messages/"+itoa(id)+"/read", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"].(map[string]any)["read_at"])

	// Read receipt shows up in the detail view.
	status, _, body = doJSON(t, srv, "GET", "/messages/"+itoa(id), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["message"].(map[string]any)["read_at"])
}

func TestMessageFeeds(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := register(t, srv, "alice")
	bobToken := register(t, srv, "bob")

	status, _, _ := doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "bob",
		Body:       "first",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _, _ = doJSON(t, srv, "POST", "/messages", aliceToken, CreateMessageRequest{
		ToUsername: "bob",
		Body:       "second",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _, body := doJSON(t, srv, "GET", "/users/bob/to", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "first", first["body"])
	assert.Equal(t, "alice", first["from_user"].(map[string]any)["username"])

	status, _, body = doJSON(t, srv, "GET", "/users/alice/from", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	msgs = body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "bob", msgs[0].(map[string]any)["to_user"].(map[string]any)["username"])

	// Feeds are scoped to the path user; alice cannot read bob's inbox.
	status, _, _ = doJSON(t, srv, "GET", "/users/bob/to", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMessageFeeds_Empty(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/users/alice/to", token, nil)

	require.Equal(t, http.StatusOK, status)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok, "messages must be a JSON array, not null")
	assert.Empty(t, msgs)
}

func TestGetMessage_InvalidID(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/messages/abc", token, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid message id", body["error"])
}

func TestGetMessage_NotFound(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	status, _, body := doJSON(t, srv, "GET", "/messages/9999", token, nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "message not found", body["error"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, _, body := doJSON(t, srv, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _, body = doJSON(t, srv, "GET", "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	_, header, _ := doJSON(t, srv, "GET", "/health", "", nil)
	assert.NotEmpty(t, header.Get("X-Request-ID"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
