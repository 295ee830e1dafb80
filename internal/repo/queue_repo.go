// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the delivery queue operations: the
// publish-time fan-out insert and the worker-side atomic claim.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/abd0-omar/newzletter/internal/domain"
)

// EnqueueDeliveryTasks inserts one delivery task per subscriber whose status
// is "confirmed" at this instant, as a single INSERT ... SELECT. Subscribers
// confirmed later are not retroactively included in this issue's fan-out.
//
// tx must be the same open transaction that created the issue. The returned
// count is the number of tasks enqueued.
func EnqueueDeliveryTasks(ctx context.Context, tx *gorm.DB, issueID string) (int64, error) {
	res := tx.WithContext(ctx).Exec(`
		INSERT INTO issue_delivery_queue (newsletter_issue_id, subscriber_email)
		SELECT ?, email
		FROM subscriptions
		WHERE status = ?`,
		issueID, domain.SubscriptionStatusConfirmed,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DequeueDeliveryTask atomically deletes and returns one arbitrary pending
// task. The DELETE ... RETURNING claim guarantees no two workers ever see
// the same row; once claimed the task is gone regardless of send outcome.
//
// It returns (nil, nil) when the queue is empty.
func DequeueDeliveryTask(ctx context.Context, db *gorm.DB) (*domain.DeliveryTask, error) {
	var task domain.DeliveryTask
	res := db.WithContext(ctx).Raw(`
		DELETE FROM issue_delivery_queue
		WHERE rowid IN (
			SELECT rowid
			FROM issue_delivery_queue
			LIMIT 1
		)
		RETURNING newsletter_issue_id, subscriber_email`,
	).Scan(&task)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &task, nil
}

// CountDeliveryTasks returns the number of pending tasks.
func CountDeliveryTasks(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.DeliveryTask{}).Count(&total).Error
	return total, err
}
