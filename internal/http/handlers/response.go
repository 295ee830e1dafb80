// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by all endpoints: the
// structured error envelope and the writer that materializes a persisted
// StoredResponse onto the wire byte-for-byte.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: reqID, Code: code, Message: msg})
}

// Fail is the exported variant of fail(), for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// writeStored replays a StoredResponse exactly as it was captured: same
// status code, same header pairs in order (duplicate names preserved via
// Add), same body bytes. It bypasses gin's render helpers on purpose so no
// content negotiation or re-encoding can alter the bytes.
func writeStored(c *gin.Context, resp *domain.StoredResponse) {
	h := c.Writer.Header()
	for _, p := range resp.Headers {
		h.Add(p.Name, string(p.Value))
	}
	c.Writer.WriteHeader(resp.StatusCode)
	_, _ = c.Writer.Write(resp.Body)
}
