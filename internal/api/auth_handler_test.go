package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/config"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/mocks"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authHandlerEnv bundles an AuthHandler with the mocks behind it.
type authHandlerEnv struct {
	handler  *AuthHandler
	users    *mocks.MockUserStore
	jwt      *auth.MockJWTService
	verifier *mocks.MockPasswordVerifier
}

func newAuthHandlerEnv(t *testing.T) *authHandlerEnv {
	t.Helper()

	users := mocks.NewMockUserStore()
	jwtService := auth.NewMockJWTService()
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
	authConfig := &config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 7 * 24 * 60,
	}

	return &authHandlerEnv{
		handler:  NewAuthHandler(users, jwtService, verifier, authConfig),
		users:    users,
		jwt:      jwtService,
		verifier: verifier,
	}
}

// seedUser registers an existing account in the mock user store.
func (env *authHandlerEnv) seedUser(t *testing.T, name, email string, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(name, email, role)
	require.NoError(t, err)
	user.HashedPassword = "stored-bcrypt-hash"
	env.users.AddUser(user)
	return user
}

func postJSON(t *testing.T, path, body string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return httptest.NewRecorder(), req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	message, _ := response["error"].(string)
	return message
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates an employee by default", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Priya Raman","email":"priya@example.com","password":"a long password"}`)
		env.handler.Register(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotEqual(t, uuid.Nil, resp.UserID)
		assert.Equal(t, "Priya Raman", resp.Name)
		assert.Equal(t, domain.RoleEmployee, resp.Role)
		assert.Equal(t, "mock-jwt-token", resp.AccessToken)
		assert.Equal(t, "mock-refresh-token", resp.RefreshToken)
		assert.NotEmpty(t, resp.ExpiresAt)

		stored, err := env.users.GetByEmail(req.Context(), "priya@example.com")
		require.NoError(t, err)
		assert.Equal(t, resp.UserID, stored.ID)
	})

	t.Run("honors an explicit role", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Meera Iyer","email":"meera@example.com","password":"a long password","role":"manager"}`)
		env.handler.Register(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, domain.RoleManager, resp.Role)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		env := newAuthHandlerEnv(t)
		env.seedUser(t, "Priya Raman", "priya@example.com", domain.RoleEmployee)

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Impostor","email":"priya@example.com","password":"a long password"}`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Email already exists", decodeError(t, rr))
	})

	t.Run("rejects a short password", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Priya Raman","email":"priya@example.com","password":"short"}`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Priya Raman","email":"priya@example.com","password":"a long password","role":"superuser"}`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/register", `{"name":`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, rr))
	})

	t.Run("reports token generation failure", func(t *testing.T) {
		env := newAuthHandlerEnv(t)
		env.jwt.TokenError = errors.New("signing key unavailable")

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Priya Raman","email":"priya@example.com","password":"a long password"}`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to generate authentication token", decodeError(t, rr))
	})

	t.Run("reports store failure", func(t *testing.T) {
		env := newAuthHandlerEnv(t)
		env.users.CreateFn = func(_ context.Context, _ *domain.User, _ string) error {
			return errors.New("connection reset")
		}

		rr, req := postJSON(t, "/auth/register",
			`{"name":"Priya Raman","email":"priya@example.com","password":"a long password"}`)
		env.handler.Register(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to create user", decodeError(t, rr))
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("authenticates a known user", func(t *testing.T) {
		env := newAuthHandlerEnv(t)
		user := env.seedUser(t, "Meera Iyer", "meera@example.com", domain.RoleManager)

		rr, req := postJSON(t, "/auth/login",
			`{"email":"meera@example.com","password":"correct horse battery staple"}`)
		env.handler.Login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "Meera Iyer", resp.Name)
		assert.Equal(t, domain.RoleManager, resp.Role)
		assert.Equal(t, "mock-jwt-token", resp.AccessToken)
		assert.Equal(t, "mock-refresh-token", resp.RefreshToken)
		assert.Equal(t, 1, env.verifier.CompareCallCount)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/login",
			`{"email":"nobody@example.com","password":"whatever it was"}`)
		env.handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, rr))
		// The password is never checked for unknown accounts
		assert.Equal(t, 0, env.verifier.CompareCallCount)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		env := newAuthHandlerEnv(t)
		env.seedUser(t, "Meera Iyer", "meera@example.com", domain.RoleManager)
		env.verifier.ShouldSucceed = false

		rr, req := postJSON(t, "/auth/login",
			`{"email":"meera@example.com","password":"not the password"}`)
		env.handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, rr))
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/login", `{not json`)
		env.handler.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, rr))
	})

	t.Run("requires a password", func(t *testing.T) {
		env := newAuthHandlerEnv(t)

		rr, req := postJSON(t, "/auth/login", `{"email":"meera@example.com","password":""}`)
		env.handler.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
