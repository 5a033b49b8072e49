package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(testSecret, testIssuer))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": tenantFrom(c), "user": c.GetString(ctxUser)})
	})
	return router
}

func serveWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	router := newAuthRouter(t)

	t.Run("Should accept valid token and expose claims", func(t *testing.T) {
		w := serveWithAuth(router, "Bearer "+token(t, "school"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"school","user":"user-1"}`, w.Body.String())
	})

	t.Run("Should require authorization header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(router, "").Code)
	})

	t.Run("Should reject malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(router, "Token abc").Code)
	})

	t.Run("Should reject wrong signature", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": testIssuer}).
			SignedString([]byte("other-secret"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(router, "Bearer "+signed).Code)
	})

	t.Run("Should reject expired token", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": testIssuer,
			"exp": time.Now().Add(-time.Minute).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(router, "Bearer "+signed).Code)
	})

	t.Run("Should reject foreign issuer", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "someone-else"}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, serveWithAuth(router, "Bearer "+signed).Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(1, 2)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_GetLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	first := rl.GetLimiter("key")
	assert.Same(t, first, rl.GetLimiter("key"))

	rl.idleTTL = 0
	time.Sleep(time.Millisecond)
	rl.GetLimiter("other")
	assert.NotContains(t, rl.limiters, "key")
}

func TestReportCache(t *testing.T) {
	cache, err := NewReportCache(2)
	require.NoError(t, err)

	_, ok := cache.Get("t", 1, "text", "")
	assert.False(t, ok)

	cache.Add("t", 1, "text", "", nil)
	_, ok = cache.Get("t", 1, "text", "")
	assert.True(t, ok)

	_, ok = cache.Get("t", 2, "text", "")
	assert.False(t, ok)
	_, ok = cache.Get("t", 1, "text", "x")
	assert.False(t, ok)

	_, err = NewReportCache(0)
	assert.Error(t, err)
}

func TestReportCache_KeysOnFullInput(t *testing.T) {
	cache, err := NewReportCache(8)
	require.NoError(t, err)

	high := &plagiarism.Report{Percentage: 100, SuspicionLevel: plagiarism.SuspicionHigh}
	cache.Add("t", 1, "first essay", "", high)

	t.Run("Should miss for a different text", func(t *testing.T) {
		_, ok := cache.Get("t", 1, "second essay", "")
		assert.False(t, ok)
	})

	t.Run("Should not confuse fields across boundaries", func(t *testing.T) {
		cache.Add("a|1", 2, "x", "", high)
		_, ok := cache.Get("a", 1, "2|x", "")
		assert.False(t, ok)
	})

	t.Run("Should return the stored report for identical input", func(t *testing.T) {
		got, ok := cache.Get("t", 1, "first essay", "")
		require.True(t, ok)
		assert.Same(t, high, got)
	})
}
