// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Subscription model.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abd0-omar/newzletter/internal/domain"
)

// ErrDuplicate indicates that a subscription already exists for the
// given email address.
var ErrDuplicate = errors.New("duplicate")

// CreateSubscription inserts a subscriber row and returns ErrDuplicate on a
// unique-email violation.
func CreateSubscription(ctx context.Context, db *gorm.DB, email, name, status string) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Status:       status,
		SubscribedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sub).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return sub, nil
}

// ConfirmSubscription flips a subscriber to confirmed status. It returns
// ErrNotFound when no row matches the id.
func ConfirmSubscription(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		Update("status", domain.SubscriptionStatusConfirmed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountConfirmedSubscriptions returns the number of confirmed subscribers,
// i.e. the fan-out size of the next published issue.
func CountConfirmedSubscriptions(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("status = ?", domain.SubscriptionStatusConfirmed).
		Count(&total).Error
	return total, err
}
