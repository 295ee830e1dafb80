// Package middleware contains shared Gin middleware used by the HTTP layer:
// request correlation, structured access logging, panic recovery, Prometheus
// instrumentation, and rate limiting.
//
// Recommended ordering: RequestID → Logger → Recovery, so panics and errors
// are logged with the correlation id attached.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key holding the request-scoped logger.
	loggerKey = "logger"
)

// RequestID attaches (or propagates) a correlation identifier per request.
// An incoming X-Request-ID is reused; otherwise a new UUIDv4 is generated.
// The id is echoed on the response and stored in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes one structured access log line per request and stashes a
// request-scoped zerolog.Logger in the Gin context for handlers and services
// to enrich. Level is chosen by outcome: error for 5xx, warn for 4xx, info
// otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		rid, _ := c.Get(requestIDKey)
		ridStr, _ := rid.(string)

		l := log.With().
			Str("request_id", ridStr).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= http.StatusInternalServerError || len(c.Errors) > 0:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		}
		ev.Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// LoggerFrom returns the request-scoped logger installed by Logger, or the
// global logger when none is present (e.g. in tests).
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return &log.Logger
}

// Recovery converts panics into JSON 500 responses, preserving the
// correlation id and emitting a stack trace to the logs.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				LoggerFrom(c).Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"request_id": c.Writer.Header().Get(requestIDHeader),
					"code":       "internal_error",
					"message":    "internal server error",
				})
			}
		}()
		c.Next()
	}
}
