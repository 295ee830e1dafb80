// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// NewsletterIssue model.
//
// Error semantics:
//   - When an issue is not found, GetIssue returns ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abd0-omar/newzletter/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateIssue inserts a new NewsletterIssue row with a freshly generated
// UUID and a UTC publish timestamp. It is expected to run on an open
// transaction so the issue never becomes visible without its delivery tasks.
func CreateIssue(ctx context.Context, tx *gorm.DB, title, textContent, htmlContent string) (*domain.NewsletterIssue, error) {
	issue := &domain.NewsletterIssue{
		ID:          uuid.NewString(),
		Title:       title,
		TextContent: textContent,
		HTMLContent: htmlContent,
		PublishedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(issue).Error; err != nil {
		return nil, err
	}
	return issue, nil
}

// GetIssue fetches a single issue by id, or ErrNotFound if missing. Issues
// are created strictly before their delivery tasks, so a miss while draining
// the queue signals a data-integrity fault rather than a race.
func GetIssue(ctx context.Context, db *gorm.DB, id string) (*domain.NewsletterIssue, error) {
	var issue domain.NewsletterIssue
	err := db.WithContext(ctx).Where("id = ?", id).First(&issue).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
