package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/platform/memory"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-that-is-long-enough-for-testing"

// overlongEmail is well formed but longer than any users.email column allows.
var overlongEmail = "a@" + strings.Repeat(strings.Repeat("b", 60)+".", 5) + "com"

type testServer struct {
	t       *testing.T
	handler http.Handler
	logs    *logger.TestLogBuffer
}

func newRouter(t *testing.T, accounts service.AccountService, jwtService auth.JWTService) (http.Handler, *logger.TestLogBuffer) {
	t.Helper()
	log, buf := logger.NewTestLogger(t)

	h := NewAccountHandler(accounts, jwtService, log)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, accounts)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", func(r chi.Router) {
		MountAccountRoutes(r, h, authMiddleware.Authenticate)
	})
	return r, buf
}

// newTestServer wires the handler to a real AccountService over the memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	accounts, err := service.NewAccountService(memory.NewUserStore(), auth.NewBcryptHasher(bcrypt.MinCost), log)
	require.NoError(t, err)
	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testJWTSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	handler, buf := newRouter(t, accounts, jwtService)
	return &testServer{t: t, handler: handler, logs: buf}
}

type requestOption func(*http.Request)

func withBasic(username, password string) requestOption {
	return func(r *http.Request) { r.SetBasicAuth(username, password) }
}

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (s *testServer) do(method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(username, email, password string) AccountResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/users/register", RegisterRequest{Username: username, Email: email, Password: password})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var resp AccountResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TraceID)
	return resp.Error
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	account := s.register("alice", "a@x.com", "secret1")
	assert.NotEqual(t, uuid.Nil, account.UserID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "a@x.com", account.Email)
	assert.False(t, account.CreatedAt.IsZero())

	t.Run("response never carries the password or hash", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/register", RegisterRequest{Username: "carol", Email: "c@x.com", Password: "secret1"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "secret1")
		assert.NotContains(t, w.Body.String(), "$2a$")
		assert.NotContains(t, w.Body.String(), "password")
	})

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{"duplicate username", RegisterRequest{Username: "alice", Email: "new@x.com", Password: "pw"}, http.StatusConflict, "Username already exists"},
		{"duplicate email", RegisterRequest{Username: "bob", Email: "a@x.com", Password: "pw"}, http.StatusConflict, "Email already exists"},
		{"missing username", RegisterRequest{Email: "b@x.com", Password: "pw"}, http.StatusBadRequest, "Invalid username: required field"},
		{"bad email", RegisterRequest{Username: "bob", Email: "nope", Password: "pw"}, http.StatusBadRequest, "Invalid email: invalid email format"},
		{"overlong email", RegisterRequest{Username: "bob", Email: overlongEmail, Password: "pw"}, http.StatusBadRequest, "Invalid email: too long"},
		{"padded username", RegisterRequest{Username: " bob", Email: "b@x.com", Password: "pw"}, http.StatusBadRequest, "Invalid username: must not start or end with whitespace"},
		{"unknown field", map[string]string{"username": "bob", "role": "admin"}, http.StatusBadRequest, "Invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/users/register", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w))
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	account := s.register("alice", "a@x.com", "secret1")

	w := s.do(http.MethodPost, "/api/users/login", LoginRequest{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, account.UserID, resp.UserID)
	assert.NotEmpty(t, resp.Token)
	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		wrong := s.do(http.MethodPost, "/api/users/login", LoginRequest{Username: "alice", Password: "nope"})
		unknown := s.do(http.MethodPost, "/api/users/login", LoginRequest{Username: "mallory", Password: "nope"})

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, decodeError(t, wrong), decodeError(t, unknown))
		logger.AssertLogContains(t, s.logs, `"level":"WARN"`)
		logger.AssertLogNotContains(t, s.logs, "nope")
	})

	t.Run("token authorizes protected routes", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/users/"+account.UserID.String(), nil, withBearer(resp.Token))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/login", LoginRequest{Username: "alice"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	account := s.register("alice", "a@x.com", "secret1")

	w := s.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	w = s.do(http.MethodGet, "/api/users", nil, withBasic("alice", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/users", nil, withBearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/users", nil, withBasic("alice", "secret1"))
	require.Equal(t, http.StatusOK, w.Code)
	var list []AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, account.UserID, list[0].UserID)
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register("alice", "a@x.com", "secret1")
	bob := s.register("bob", "b@x.com", "secret2")
	creds := withBasic("alice", "secret1")

	w := s.do(http.MethodGet, "/api/users/"+bob.UserID.String(), nil, creds)
	require.Equal(t, http.StatusOK, w.Code)
	var got AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "bob", got.Username)

	w = s.do(http.MethodGet, "/api/users/"+uuid.NewString(), nil, creds)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeError(t, w))

	w = s.do(http.MethodGet, "/api/users/not-a-uuid", nil, creds)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUsernameEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	alice := s.register("alice", "a@x.com", "secret1")
	bob := s.register("bob", "b@x.com", "secret2")
	path := "/api/users/" + alice.UserID.String() + "/username"

	w := s.do(http.MethodPut, path, UpdateUsernameRequest{Username: "bob"}, withBasic("alice", "secret1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, path, UpdateUsernameRequest{Username: ""}, withBasic("alice", "secret1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/users/"+bob.UserID.String()+"/username",
		UpdateUsernameRequest{Username: "robert"}, withBasic("alice", "secret1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, path, UpdateUsernameRequest{Username: "alicia"}, withBasic("alice", "secret1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Username updated successfully"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/users", nil, withBasic("alicia", "secret1"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdatePasswordEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	alice := s.register("alice", "a@x.com", "old")
	path := "/api/users/" + alice.UserID.String() + "/password"

	w := s.do(http.MethodPut, path, UpdatePasswordRequest{CurrentPassword: "guess", NewPassword: "new"}, withBasic("alice", "old"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid current password", decodeError(t, w))

	w = s.do(http.MethodPut, path, UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "new"}, withBasic("alice", "old"))
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/users", nil, withBasic("alice", "old"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/api/users", nil, withBasic("alice", "new"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	alice := s.register("alice", "a@x.com", "secret1")

	w := s.do(http.MethodPut, "/api/users/"+alice.UserID.String()+"/profile",
		UpdateProfileRequest{FirstName: "Alice", LastName: "Liddell"}, withBasic("alice", "secret1"))
	require.Equal(t, http.StatusOK, w.Code)

	var got AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Liddell", got.LastName)
	assert.Equal(t, alice.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestDeleteEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	alice := s.register("alice", "a@x.com", "secret1")
	bob := s.register("bob", "b@x.com", "secret2")

	w := s.do(http.MethodDelete, "/api/users/"+bob.UserID.String(), nil, withBasic("alice", "secret1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A bearer token stays valid after deletion, which lets the repeat call
	// exercise idempotent delete.
	login := s.do(http.MethodPost, "/api/users/login", LoginRequest{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, login.Code)
	var tokenResp LoginResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &tokenResp))

	w = s.do(http.MethodDelete, "/api/users/"+alice.UserID.String(), nil, withBearer(tokenResp.Token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/users/"+alice.UserID.String(), nil, withBearer(tokenResp.Token))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/users/"+alice.UserID.String(), nil, withBasic("bob", "secret2"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnavailableFaultsBecome500(t *testing.T) {
	t.Parallel()

	accounts := &mocks.MockAccountService{}
	fault := &service.ServiceError{
		Service: "account",
		Op:      "find_all",
		Err:     service.ErrUnavailable,
		Cause:   errors.New("dial tcp postgres://admin:hunter2@db:5432 refused"),
	}
	accounts.On("Authenticate", mock.Anything, "alice", "secret1").Return(uuid.New(), true, nil)
	accounts.On("FindAll", mock.Anything).Return(nil, fault)

	handler, logs := newRouter(t, accounts, &mocks.MockJWTService{})
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.SetBasicAuth("alice", "secret1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to list users", decodeError(t, w))
	assert.NotContains(t, w.Body.String(), "hunter2")
	logger.AssertLogContains(t, logs, "API error response")
	logger.AssertLogNotContains(t, logs, "hunter2")
	accounts.AssertExpectations(t)
}

func TestLoginTokenFailure(t *testing.T) {
	t.Parallel()

	accounts := &mocks.MockAccountService{}
	accounts.On("Authenticate", mock.Anything, "alice", "secret1").Return(uuid.New(), true, nil)
	jwtService := &mocks.MockJWTService{Err: errors.New("signing failed")}

	handler, _ := newRouter(t, accounts, jwtService)
	body := bytes.NewBufferString(`{"username":"alice","password":"secret1"}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users/login", body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate authentication token", decodeError(t, w))
}
