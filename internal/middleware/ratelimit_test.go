package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/Sameerk99/mental-health-hub/internal/middleware"
	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

func newRedisFixture(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func doRequest(r *gin.Engine, path, clientAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = clientAddr + ":51234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsWithinWindow(t *testing.T) {
	mr, client := newRedisFixture(t)

	r := gin.New()
	r.GET("/ping", middleware.RateLimit(client, "default", 3), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	for i, wantRemaining := range []string{"2", "1", "0"} {
		w := doRequest(r, "/ping", "1.2.3.4")
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, wantRemaining, w.Header().Get("X-RateLimit-Remaining"))

		reset, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64)
		require.NoError(t, err)
		assert.Positive(t, reset)
	}

	// 窗口 key 必须带 TTL，否则计数永不归零
	assert.Positive(t, mr.TTL("ratelimit:default:1.2.3.4"))
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	_, client := newRedisFixture(t)

	r := gin.New()
	r.GET("/ping", middleware.RateLimit(client, "chat", 2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "/ping", "1.2.3.4").Code)
	}

	w := doRequest(r, "/ping", "1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "Too many requests. Wait 1 minute.")
}

func TestRateLimitCountsPerClientAddress(t *testing.T) {
	_, client := newRedisFixture(t)

	r := gin.New()
	r.GET("/ping", middleware.RateLimit(client, "default", 1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	assert.Equal(t, http.StatusOK, doRequest(r, "/ping", "1.2.3.4").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "/ping", "1.2.3.4").Code)
	// 其他客户端地址有自己的窗口
	assert.Equal(t, http.StatusOK, doRequest(r, "/ping", "5.6.7.8").Code)
}

func TestRateLimitScopesAreIndependent(t *testing.T) {
	// 与路由注册保持一致的布局：chat 用独立窗口，其余端点共享默认窗口
	_, client := newRedisFixture(t)

	r := gin.New()
	api := r.Group("/api/v1")
	chat := api.Group("/chat")
	chat.Use(middleware.RateLimit(client, "chat", 2))
	chat.POST("", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"response": "ok"}) })

	limited := api.Group("")
	limited.Use(middleware.RateLimit(client, "default", 5))
	limited.GET("/mood", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "ok"}) })

	postChat := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		req.RemoteAddr = "1.2.3.4:51234"
		r.ServeHTTP(w, req)
		return w
	}

	// 耗尽 chat 窗口
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, postChat().Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, postChat().Code)

	// 默认窗口不受 chat 请求影响，计数从满额开始
	w := doRequest(r, "/api/v1/mood", "1.2.3.4")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	mr, client := newRedisFixture(t)

	r := gin.New()
	r.GET("/ping", middleware.RateLimit(client, "default", 1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	assert.Equal(t, http.StatusOK, doRequest(r, "/ping", "1.2.3.4").Code)

	// Redis 故障时限流不得拒绝请求
	mr.SetError("LOADING Redis is loading the dataset in memory")
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "/ping", "1.2.3.4").Code)
	}
}
