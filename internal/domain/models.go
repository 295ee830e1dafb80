// Package domain defines the core persistence models for the newsletter
// service. These types are mapped with GORM and are shared across the
// repository, service, and worker layers.
package domain

import "time"

// Subscription statuses. The delivery fan-out only ever sees confirmed rows.
const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusConfirmed = "confirmed"
)

// Subscription represents a newsletter subscriber.
//
// Fields:
//   - ID: stable UUID primary key.
//   - Email: subscriber address, unique across the table.
//   - Name: display name supplied at sign-up.
//   - Status: "pending" or "confirmed"; only confirmed subscribers receive
//     newsletter issues.
//   - SubscribedAt: UTC timestamp of sign-up.
type Subscription struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"         gorm:"type:varchar(320);not null;uniqueIndex:ux_subscriptions_email"`
	Name         string    `json:"name"          gorm:"type:varchar(255);not null"`
	Status       string    `json:"status"        gorm:"type:varchar(16);not null;check:status IN ('pending','confirmed')"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"not null"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// NewsletterIssue is a published newsletter edition. Issues are immutable
// once created; the delivery worker reads them by id while draining the
// delivery queue.
type NewsletterIssue struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null"`
	TextContent string    `json:"text_content" gorm:"type:text;not null"`
	HTMLContent string    `json:"html_content" gorm:"type:text;not null"`
	PublishedAt time.Time `json:"published_at" gorm:"not null"`
}

// TableName returns the database table name for NewsletterIssue.
func (NewsletterIssue) TableName() string { return "newsletter_issues" }

// DeliveryTask is one pending (issue, recipient) send. Tasks are inserted in
// the same transaction that creates their issue and are deleted atomically
// when a worker claims them, so a task is either pending or already gone;
// there is no visible in-progress state.
//
// RecipientEmail is the raw string captured at publish time; it is only
// validated when the task is executed.
type DeliveryTask struct {
	IssueID        string `gorm:"column:newsletter_issue_id;type:char(36);not null;index"`
	RecipientEmail string `gorm:"column:subscriber_email;type:varchar(320);not null"`
}

// TableName returns the database table name for DeliveryTask.
func (DeliveryTask) TableName() string { return "issue_delivery_queue" }
