package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sameerk99/mental-health-hub/pkg/log"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit 创建一个按客户端地址限流的 Gin 中间件。
// 计数器为进程外共享（Redis 固定窗口），与会话无关：
// 同一地址在一分钟窗口内超过 limit 次即被拒绝，不排队不退避。
// scope 用于区分不同端点的窗口（如 chat 单独更严格的配额）。
func RateLimit(rdb *redis.Client, scope string, limit int) gin.HandlerFunc {
	const window = time.Minute

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis 不可用时放行，限流是保护措施而不是功能依赖
			log.Errorf("限流计数失败: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			// 窗口 key 必须带 TTL，否则计数永不归零，该地址会被永久拒绝。
			// 设置失败时与计数失败同样放行。
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Errorf("限流窗口设置失败: %v", err)
				c.Next()
				return
			}
		}

		ttl, _ := rdb.TTL(ctx, key).Result()
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Wait 1 minute."})
			return
		}

		c.Next()
	}
}
