package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/login", LoginRateLimit(3, time.Minute), func(c *gin.Context) {
		c.String(200, "ok")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 前三次放行
	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, do().Code)
	}

	// 第四次被限流
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "频繁")
}

func TestLoginRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/login", LoginRateLimit(1, time.Minute), func(c *gin.Context) {
		c.String(200, "ok")
	})

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, 200, do("10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1").Code)
	// 不同 IP 不受影响
	assert.Equal(t, 200, do("10.0.0.2:1").Code)
}
