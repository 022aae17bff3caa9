package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/constants"
	"github.com/helixtrack/core/internal/dto"
	"github.com/helixtrack/core/internal/logger"
	"github.com/helixtrack/core/internal/middleware"
	"github.com/helixtrack/core/internal/repository"
	"github.com/helixtrack/core/internal/services"
	"github.com/helixtrack/core/internal/testutil"
	"github.com/stretchr/testify/require"
)

type authTestEnv struct {
	handler      *AuthHandler
	authService  *services.AuthService
	tokenService *services.TokenService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	log := logger.Nop()

	audit := services.NewAuditService(repository.NewAuditRepository(db), log)
	authService := services.NewAuthService(repository.NewUserRepository(db), audit, log)
	tokenService := services.NewTokenService("test-secret", time.Hour)

	return authTestEnv{
		handler:      NewAuthHandler(authService, tokenService),
		authService:  authService,
		tokenService: tokenService,
	}
}

func newSessionRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	payload := map[string]string{
		"username": "newuser",
		"password": "supersecret",
		"email":    "newuser@example.com",
	}
	w := postJSON(t, r, "/api/auth/signup", payload)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["username"], response.User.Username)
	require.Equal(t, payload["email"], response.User.Email)
	require.NotEmpty(t, response.User.ID)
	require.NotEmpty(t, response.Token)
	require.NotEmpty(t, w.Result().Cookies(), "signup should start a session")
}

func TestAuthHandler_SignupRejections(t *testing.T) {
	env := setupAuthTestEnv(t)
	_, err := env.authService.Signup(services.SignupInput{Username: "taken", Password: "supersecret"})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/signup", env.handler.Signup)

	tests := []struct {
		name    string
		payload map[string]string
		code    int
	}{
		{"short password", map[string]string{"username": "bob", "password": "short"}, http.StatusBadRequest},
		{"missing username", map[string]string{"password": "supersecret"}, http.StatusBadRequest},
		{"bad email", map[string]string{"username": "carol", "password": "supersecret", "email": "nope"}, http.StatusBadRequest},
		{"duplicate username", map[string]string{"username": "taken", "password": "supersecret"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/auth/signup", tt.payload)
			require.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(services.SignupInput{
		Username: "existing",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.User.Username)
	require.NotEmpty(t, response.Token)
	require.Greater(t, response.ExpiresAt, time.Now().Unix())

	subject, err := env.tokenService.Verify(response.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Username: "existing", Password: "supersecret"})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, w.Result().Cookies())
}

func TestAuthHandler_SessionRoundTrip(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{Username: "existing", Password: "supersecret"})
	require.NoError(t, err)

	r := newSessionRouter()
	r.POST("/api/auth/login", env.handler.Login)
	r.POST("/api/auth/logout", env.handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(nil), env.handler.GetCurrentUser)

	login := postJSON(t, r, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, login.Code)

	me := func(cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := me(login.Result().Cookies())
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)

	require.Equal(t, http.StatusUnauthorized, me(nil).Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Signup(services.SignupInput{
		Username: "current-user",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUserID, user.ID)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Username, response.Username)
}

func TestAuthHandler_GetCurrentUserUnknown(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUserID, "ghost")

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_ProfileAndPassword(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPatch, "/api/auth/me", map[string]string{"name": "Alice Liddell"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user dto.UserDTO
	decode(t, w, &user)
	require.Equal(t, "Alice Liddell", user.Name)

	w = env.do(t, http.MethodPut, "/api/auth/password", map[string]string{
		"current_password": "wrongpassword",
		"new_password":     "anothersecret",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPut, "/api/auth/password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "anothersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "anothersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
}
