package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"support-chat-go/pkg/token"
)

func newAuthedRouter(jwtManager *token.JWTManager, requireAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	group := r.Group("/", AuthMiddleware(jwtManager))
	if requireAdmin {
		group.Use(AdminAuthMiddleware())
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthedRouter(token.NewJWTManager("secret", 1), false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsBadFormat(t *testing.T) {
	r := newAuthedRouter(token.NewJWTManager("secret", 1), false)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	other := token.NewJWTManager("other-secret", 1)
	tok, err := other.GenerateToken("u1", "user")
	require.NoError(t, err)

	r := newAuthedRouter(token.NewJWTManager("secret", 1), false)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	jwtManager := token.NewJWTManager("secret", 1)
	tok, err := jwtManager.GenerateToken("u1", "user")
	require.NoError(t, err)

	r := newAuthedRouter(jwtManager, false)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthMiddlewareRejectsNonAdmin(t *testing.T) {
	jwtManager := token.NewJWTManager("secret", 1)
	tok, err := jwtManager.GenerateToken("u1", "user")
	require.NoError(t, err)

	r := newAuthedRouter(jwtManager, true)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAuthMiddlewareAllowsAdmin(t *testing.T) {
	jwtManager := token.NewJWTManager("secret", 1)
	tok, err := jwtManager.GenerateToken("u1", "admin")
	require.NoError(t, err)

	r := newAuthedRouter(jwtManager, true)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	r := newAuthedRouter(token.NewJWTManager("secret", 1), false)

	// 预检请求无需授权头即可放行
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	// 普通请求同样携带跨域头
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
