// Package services – SubscriptionService
//
// This file implements subscriber intake. New subscribers start out pending;
// the delivery fan-out only ever sees confirmed rows, so Confirm is the
// explicit step that opts an address into future issues. A duplicate sign-up
// is reported as such so the handler can answer without leaking whether the
// address was already subscribed.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/repo"
)

// SubscriptionService manages the subscriber roster.
type SubscriptionService struct {
	DB *gorm.DB
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db}
}

// Subscribe validates and stores a new pending subscriber. The second return
// value reports whether the row was created; false with a nil error means
// the address was already subscribed.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) (*domain.Subscription, bool, error) {
	tr := otel.Tracer("services/SubscriptionService")
	ctx, span := tr.Start(ctx, "Subscribe",
		trace.WithAttributes(attribute.String("subscriber.email", email)),
	)
	defer span.End()

	if !domain.ValidSubscriberName(name) {
		return nil, false, ErrInvalidName
	}
	addr, err := domain.ParseSubscriberEmail(email)
	if err != nil {
		return nil, false, err
	}

	sub, err := repo.CreateSubscription(ctx, s.DB, addr.String(), name, domain.SubscriptionStatusPending)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// Confirm marks a subscription as confirmed so it participates in future
// issue fan-outs. Issues published before this moment are unaffected.
func (s *SubscriptionService) Confirm(ctx context.Context, id string) error {
	err := repo.ConfirmSubscription(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrSubscriptionNotFound
	}
	return err
}
