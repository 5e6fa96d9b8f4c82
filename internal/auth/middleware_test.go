// internal/auth/middleware_test.go
package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(am *AuthManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(am.Middleware())
	r.GET("/api/v1/ask", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return r
}

// TestMiddlewareRejectsUnauthenticated tests that protected routes require auth
func TestMiddlewareRejectsUnauthenticated(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})
	r := setupTestRouter(am)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestMiddlewareSkipsHealthEndpoint tests that health checks bypass auth
func TestMiddlewareSkipsHealthEndpoint(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})
	r := setupTestRouter(am)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestMiddlewareAcceptsJWT tests Bearer token authentication
func TestMiddlewareAcceptsJWT(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})
	r := setupTestRouter(am)

	user, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestMiddlewareAcceptsAPIKey tests X-API-Key authentication
func TestMiddlewareAcceptsAPIKey(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})
	r := setupTestRouter(am)

	user, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	apiKey, err := am.CreateAPIKey(user.ID, "test", nil, 50, 24*time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	req.Header.Set("X-API-Key", apiKey.Key)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestMiddlewareAllowsAnonymousPublicEndpoints tests anonymous access config
func TestMiddlewareAllowsAnonymousPublicEndpoints(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{
		JWTSecret:      "test-secret",
		AllowAnonymous: true,
	})
	r := setupTestRouter(am)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestMiddlewareRateLimit tests that the rate limit blocks excess requests
func TestMiddlewareRateLimit(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{
		JWTSecret: "test-secret",
		RateLimit: 2,
	})
	r := setupTestRouter(am)

	user, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.RemoteAddr = "10.1.2.3:1234"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

// TestRequireRole tests role-based access control
func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	r := gin.New()
	r.Use(am.Middleware())
	r.GET("/admin-only", am.RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	adminToken, err := am.CreateJWTToken(admin)
	require.NoError(t, err)

	regular, err := am.CreateUser("vendedor", "v@example.com", []string{"user"})
	require.NoError(t, err)
	userToken, err := am.CreateJWTToken(regular)
	require.NoError(t, err)

	t.Run("admin role passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("user role is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+userToken)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
