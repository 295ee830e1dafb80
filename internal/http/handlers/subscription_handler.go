// Subscription HTTP handlers.
//
//   - POST /subscriptions              (sign up, pending status)
//   - PUT  /subscriptions/:id/confirm  (opt the subscriber into fan-outs)
//
// A duplicate sign-up returns the same acknowledgment as a fresh one so the
// endpoint does not leak who is already subscribed.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/services"
)

// SubscribeRequest is the payload for signing up a subscriber. It binds from
// either a JSON body or an HTML form.
type SubscribeRequest struct {
	Name  string `json:"name"  form:"name"  binding:"required"`
	Email string `json:"email" form:"email" binding:"required"`
}

// SubscribeResponse acknowledges a sign-up.
type SubscribeResponse struct {
	Status string `json:"status"`
}

// Subscribe registers a new pending subscriber.
func (h *Handlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and email are required")
		return
	}

	_, _, err := h.subSvc.Subscribe(c.Request.Context(), req.Name, req.Email)
	switch {
	case errors.Is(err, services.ErrInvalidName), errors.Is(err, domain.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeSubscribeFailed, "failed to store subscription")
		return
	}

	// Same body whether the row was created or already existed.
	c.JSON(http.StatusCreated, SubscribeResponse{Status: "subscribed"})
}

// ConfirmSubscription flips a subscriber to confirmed status.
func (h *Handlers) ConfirmSubscription(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a UUID")
		return
	}

	if err := h.subSvc.Confirm(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to confirm subscription")
		return
	}
	c.Status(http.StatusNoContent)
}
