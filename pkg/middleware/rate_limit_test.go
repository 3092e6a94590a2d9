package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	req := httptest.NewRequest("GET", "/ok", nil)
	w := httptest.NewRecorder()

	// two quick requests should pass
	r.ServeHTTP(w, req)
	req2 := httptest.NewRequest("GET", "/ok", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusOK, w2.Code)
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// distinct device token so other tests' buckets don't interfere
	mk := func() *httptest.ResponseRecorder {
		rq := httptest.NewRequest("GET", "/limited", nil)
		rq.Header.Set("X-Device-Token", "limit-test-device")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w
	}

	// first request -> allowed
	require.Equal(t, http.StatusOK, mk().Code)

	// immediate second request -> should be rate-limited
	require.Equal(t, http.StatusTooManyRequests, mk().Code)

	// wait long enough to replenish one token and it should be allowed
	time.Sleep(2100 * time.Millisecond)
	require.Equal(t, http.StatusOK, mk().Code)
}

func TestLimiterKey_PrefersDeviceToken(t *testing.T) {
	g := gin.New()
	var key string
	g.GET("/", func(c *gin.Context) {
		key = limiterKey(c)
		c.Status(200)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Device-Token", "device-42")
	g.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "device:device-42", key)

	req = httptest.NewRequest("GET", "/", nil)
	g.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEmpty(t, key)
	require.Contains(t, key, "ip:")
}
