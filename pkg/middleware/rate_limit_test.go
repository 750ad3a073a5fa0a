package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/factdeck/factdeck/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func serve(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/api/facts/space", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"facts": []string{}}) })

	require.Equal(t, http.StatusOK, serve(r, "/api/facts/space"))
	require.Equal(t, http.StatusOK, serve(r, "/api/facts/space"))

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/generate-fact/:topic", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"fact": "x"}) })

	require.Equal(t, http.StatusOK, serve(r, "/generate-fact/sky"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/generate-fact/sky"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	// one token refills after 0.5s
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, serve(r, "/generate-fact/sky"))
}

func TestRateLimitMiddleware_InstancesAreIndependent(t *testing.T) {
	strict := gin.New()
	strict.Use(RateLimitMiddleware(0.1, 1))
	strict.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	loose := gin.New()
	loose.Use(RateLimitMiddleware(100, 10))
	loose.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(strict, "/x"))
	require.Equal(t, http.StatusTooManyRequests, serve(strict, "/x"))
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(loose, "/x"))
	}
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	sub := "user-123"
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ClaimsKey, map[string]interface{}{"sub": sub})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/u"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/u"))

	// a different subject from the same IP has its own bucket
	sub = "user-456"
	require.Equal(t, http.StatusOK, serve(r, "/u"))
}
