package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/types"
)

// RequestIDMiddleware tags the request context with a request id and the
// acting operator, taken from the incoming headers when present.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}
	ctx = types.SetRequestID(ctx, requestID)

	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// LoggingMiddleware writes one structured line per request
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()))
	}
}
