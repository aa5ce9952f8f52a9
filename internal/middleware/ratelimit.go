package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/service"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
	"github.com/marktrack/marktrack-api/pkg/response"
)

// AttemptCounter counts requests per client within a fixed window.
type AttemptCounter interface {
	CountAttempt(ctx context.Context, bucket, ip string, window time.Duration) (int64, error)
}

// RateLimit rejects clients exceeding limit requests per minute on the named
// bucket. Counting errors fail open so a Redis outage never locks users out.
func RateLimit(counter AttemptCounter, bucket string, limit int, metricsSvc *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		count, err := counter.CountAttempt(c.Request.Context(), bucket, c.ClientIP(), time.Minute)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count > int64(limit) {
			metricsSvc.ObserveRateLimited()
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
