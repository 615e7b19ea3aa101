package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-api/internal/auth"
	"todo-api/internal/cache"
	"todo-api/internal/logging"
	"todo-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const cookieName = "todo_session"

func newSessions() *auth.SessionManager {
	issuer := auth.NewTokenIssuer("secret", "todo-api", "todo-client", time.Hour)
	return auth.NewSessionManager(issuer, cache.NewTTLCache[string, auth.Session](), logging.Discard())
}

func protectedRouter(sessions *auth.SessionManager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionAuth(sessions, cookieName))
	r.Use(extra...)
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": Identity(c).UserID, "session": SessionID(c)})
	})
	return r
}

func TestSessionAuth_Cookie(t *testing.T) {
	sessions := newSessions()
	token, _, err := sessions.Establish(models.Identity{UserID: 3, Role: models.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	w := httptest.NewRecorder()
	protectedRouter(sessions).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":3`)
}

func TestSessionAuth_BearerHeader(t *testing.T) {
	sessions := newSessions()
	token, _, err := sessions.Establish(models.Identity{UserID: 3})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(sessions).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAuth_MissingOrRevoked(t *testing.T) {
	sessions := newSessions()
	r := protectedRouter(sessions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, s, err := sessions.Establish(models.Identity{UserID: 3})
	require.NoError(t, err)
	sessions.Revoke(s.ID)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	sessions := newSessions()
	r := protectedRouter(sessions, RequireAdmin())

	userToken, _, err := sessions.Establish(models.Identity{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, _, err := sessions.Establish(models.Identity{UserID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)

	for token, want := range map[string]int{userToken: http.StatusForbidden, adminToken: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, want, w.Code)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://app.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"*", "http://app.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://app.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logging.Discard()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusTeapot, w.Code)
}
