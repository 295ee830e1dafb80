// Newsletter HTTP handlers.
//
// This file exposes the admin publishing endpoints:
//   - GET  /admin/newsletters   (publish form metadata, fresh idempotency key)
//   - POST /admin/newsletters   (publish an issue, idempotent on the key)
//
// Handlers are transport-thin: they bind input, call the publish service,
// and translate results into HTTP responses. Authentication is an upstream
// concern; the user identity is read from the context or the X-User-ID
// header the way upstream middleware injects it.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/services"
)

// PublishService defines the publish operation consumed by HTTP handlers.
// Implementations must be safe for concurrent use and must honor the
// provided context.
type PublishService interface {
	Publish(ctx context.Context, userID string, in services.PublishInput) (*services.PublishResult, error)
}

// SubscriptionService defines subscriber intake operations.
type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) (*domain.Subscription, bool, error)
	Confirm(ctx context.Context, id string) error
}

// Handlers groups the HTTP endpoints for publishing and subscriptions.
type Handlers struct {
	publishSvc PublishService
	subSvc     SubscriptionService
}

// New constructs a Handlers instance bound to the given services.
func New(publishSvc PublishService, subSvc SubscriptionService) *Handlers {
	return &Handlers{publishSvc: publishSvc, subSvc: subSvc}
}

// userID extracts the authenticated user id from the Gin context (set by
// upstream middleware), falling back to the X-User-ID header and finally to
// "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// PublishNewsletterRequest is the payload for publishing an issue. It binds
// from either a JSON body or an HTML form.
type PublishNewsletterRequest struct {
	Title          string `json:"title"           form:"title"           binding:"required"`
	TextContent    string `json:"text_content"    form:"text_content"    binding:"required"`
	HTMLContent    string `json:"html_content"    form:"html_content"    binding:"required"`
	IdempotencyKey string `json:"idempotency_key" form:"idempotency_key" binding:"required"`
}

// NewsletterFormResponse carries what a client needs to render the publish
// form: a freshly generated idempotency key to attach to the next submit.
type NewsletterFormResponse struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// GetNewsletterForm hands out publish-form metadata, including a fresh
// idempotency key for the next submission.
func (h *Handlers) GetNewsletterForm(c *gin.Context) {
	c.JSON(http.StatusOK, NewsletterFormResponse{IdempotencyKey: uuid.NewString()})
}

// PublishNewsletter publishes a newsletter issue. Retries carrying the same
// idempotency key receive the original response without re-running the
// side effects.
func (h *Handlers) PublishNewsletter(c *gin.Context) {
	var req PublishNewsletterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title, text_content, html_content and idempotency_key are required")
		return
	}

	result, err := h.publishSvc.Publish(c.Request.Context(), userID(c), services.PublishInput{
		Title:          req.Title,
		TextContent:    req.TextContent,
		HTMLContent:    req.HTMLContent,
		IdempotencyKey: req.IdempotencyKey,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidIdempotencyKey):
		fail(c, http.StatusBadRequest, ErrCodeInvalidIdempotencyKey, err.Error())
		return
	case errors.Is(err, services.ErrEmptyTitle), errors.Is(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodePublishFailed, "failed to publish newsletter issue")
		return
	}

	writeStored(c, result.Response)
}
