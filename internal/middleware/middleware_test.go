package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/helixtrack/core/internal/constants"
	"github.com/helixtrack/core/internal/logger"
	"github.com/helixtrack/core/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, userID)
	})
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Bearer(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	token, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	r := newRouter(RequireAuth(tokens))

	w := get(r, constants.BearerPrefix+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, constants.BearerPrefix+"garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic dXNlcjpwYXNz").Code)
}

func TestRequireAuth_IgnoresBearerWithoutTokenService(t *testing.T) {
	other := services.NewTokenService("secret", time.Hour)
	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	r := newRouter(RequireAuth(nil))
	assert.Equal(t, http.StatusUnauthorized, get(r, constants.BearerPrefix+token).Code)
}

func TestPermissionGuard_Disabled(t *testing.T) {
	var nilGuard *PermissionGuard
	r := newRouter(nilGuard.RequirePermission(3, ProjectFromParam))
	assert.Equal(t, http.StatusOK, get(r, "").Code)

	off := NewPermissionGuard(nil, false, logger.Nop())
	r = newRouter(off.RequirePermission(3, ProjectFromParam))
	assert.Equal(t, http.StatusOK, get(r, "").Code)
}

func TestPermissionGuard_RequiresUserAndContext(t *testing.T) {
	guard := NewPermissionGuard(nil, true, logger.Nop())

	r := newRouter(guard.RequirePermission(3, ProjectFromParam))
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)

	tokens := services.NewTokenService("secret", time.Hour)
	token, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	// "/" has no :id parameter to resolve
	r = newRouter(RequireAuth(tokens), guard.RequirePermission(3, ProjectFromParam))
	assert.Equal(t, http.StatusBadRequest, get(r, constants.BearerPrefix+token).Code)
}

func TestContextFromBody_LeavesBodyForHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"context_id":"ctx-1","holder_id":"u-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	contextID, ok := ContextFromBody(c)
	require.True(t, ok)
	assert.Equal(t, "ctx-1", contextID)

	var body struct {
		HolderID string `json:"holder_id"`
	}
	require.NoError(t, c.ShouldBindBodyWith(&body, binding.JSON))
	assert.Equal(t, "u-1", body.HolderID)

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"holder_id":"u-1"}`))
	c.Keys = nil
	_, ok = ContextFromBody(c)
	assert.False(t, ok)

	contextID, ok = NodeContext(c)
	assert.True(t, ok)
	assert.Equal(t, constants.NodeContextID, contextID)
}
