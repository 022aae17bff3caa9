package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helixtrack/core/internal/constants"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request and exposes a request-scoped logger
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(constants.ContextKeyLogger, log)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		if userID, ok := GetUserID(c); ok {
			event = event.Str("user_id", userID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
