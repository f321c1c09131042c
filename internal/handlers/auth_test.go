package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

func newAuthRouter(env testEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	RegisterRoutes(r, env.svc.Auth, env.queries)
	return r
}

func login(t *testing.T, r *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupTestEnv(t)
	r := newAuthRouter(env)

	w := login(t, r, "  ADMIN@example.com ", database.DemoAdminPassword)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Success bool        `json:"success"`
		Data    models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.True(t, loginResp.Success)
	require.Equal(t, database.DemoAdminEmail, loginResp.Data.Email)
	require.NotContains(t, w.Body.String(), "passwordHash")

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"firstName":"John"`)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	env := setupTestEnv(t)
	r := newAuthRouter(env)

	w := login(t, r, database.DemoAdminEmail, "wrong-password")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), `"code":"INVALID_CREDENTIALS"`)

	w = login(t, r, "alice.johnson@example.com", "anything")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = login(t, r, "not-an-email", "x")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ProtectedRoutesRequireSession(t *testing.T) {
	env := setupTestEnv(t)
	r := newAuthRouter(env)

	for _, path := range []string{"/api/auth/me", "/api/users", "/api/dashboard/metrics", "/admin/dashboard"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupTestEnv(t)
	r := newAuthRouter(env)

	w := login(t, r, database.DemoAdminEmail, database.DemoAdminPassword)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Logged out successfully")
}
