package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderSessionID      = "X-Session-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, and binds a
// request-scoped logger to the request context.
func RequestID(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		l := base.With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequestLogger logs one line per request after the handler chain returns.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := zerolog.Ctx(c.Request.Context())
		ev := l.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = l.Error()
		} else if c.Writer.Status() >= http.StatusBadRequest {
			ev = l.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}

// Recovery turns a panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Str("panic", fmt.Sprint(rec)).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	})
}
