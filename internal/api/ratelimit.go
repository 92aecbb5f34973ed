package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/radini5948/Bieszczady/internal/config"
)

// RateLimitMiddleware enforces a global requests-per-second limit with the
// burst allowance taken from server configuration.
func RateLimitMiddleware(cfg config.ServerConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
