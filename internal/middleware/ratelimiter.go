package middleware

import (
	"time"

	"electron-shop/api/internal/common"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/util"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CatalogRateLimiter allows limit requests per client IP in each rate
// limit window. Counters live in Redis when a client is given and in
// process memory otherwise.
func CatalogRateLimiter(client *redis.Client, limit int) gin.HandlerFunc {
	if limit <= 0 {
		limit = 100
	}

	var store ratelimit.Store
	if client != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        common.RATE_LIMIT_WINDOW,
			Limit:       uint(limit),
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  common.RATE_LIMIT_WINDOW,
			Limit: uint(limit),
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			util.HandleAppError(c, catalog.RateLimited(time.Until(info.ResetTime).Round(time.Second).String()))
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
