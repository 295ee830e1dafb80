// Package services – PublishService
//
// This file implements the publish orchestrator. A publish request runs the
// state machine Start → ReserveOrReplay → {Replay | Execute → Enqueue →
// Complete}: it either replays the response saved for the request's
// idempotency key, or creates the newsletter issue, fans it out into the
// delivery queue, and saves the response — all inside one transaction whose
// single commit makes the issue, its tasks, and the completed idempotency
// record visible atomically.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/repo"
)

// publishedLocation is where a successful publish redirects the caller.
const publishedLocation = "/admin/newsletters"

// publishedMessage acknowledges a publish; replays return the same bytes.
const publishedMessage = "The newsletter issue has been published!"

// PublishInput carries the validated-at-the-edge form fields of a publish
// request. IdempotencyKey is re-validated here before any storage access.
type PublishInput struct {
	Title          string
	TextContent    string
	HTMLContent    string
	IdempotencyKey string
}

// PublishResult is the outcome of a publish request. Replayed reports
// whether the response was served from the idempotency cache instead of
// executing the side-effecting path.
type PublishResult struct {
	Response *domain.StoredResponse
	Replayed bool
	IssueID  string
}

// PublishService orchestrates newsletter publishing. It owns no state beyond
// the database handle; every request runs on its own transaction.
type PublishService struct {
	DB *gorm.DB
}

// NewPublishService constructs a PublishService.
func NewPublishService(db *gorm.DB) *PublishService {
	return &PublishService{DB: db}
}

// Publish executes one logical publish request for userID.
//
// Retries with the same idempotency key never create a second issue or a
// second batch of delivery tasks: the first execution to reserve the key
// wins, everyone else gets the byte-identical saved response. Any failure
// before the final commit rolls the whole transaction back, so the next
// retry with the same key starts clean.
func (s *PublishService) Publish(ctx context.Context, userID string, in PublishInput) (*PublishResult, error) {
	tr := otel.Tracer("services/PublishService")
	ctx, span := tr.Start(ctx, "Publish",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	key, err := domain.ParseIdempotencyKey(in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if in.TextContent == "" || in.HTMLContent == "" {
		return nil, ErrEmptyContent
	}

	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin publish transaction: %w", tx.Error)
	}
	// No-op once Commit has run; guarantees rollback on every early exit.
	defer tx.Rollback()

	won, err := repo.ReserveIdempotencyKey(ctx, tx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !won {
		// Another execution owns or finished this key. Release our
		// transaction before reading the committed state.
		tx.Rollback()
		saved, err := repo.GetSavedResponse(ctx, s.DB, userID, key)
		if err != nil {
			// Reserved but never completed (owner crashed before commit),
			// or the row vanished: unrecoverable for this key.
			return nil, fmt.Errorf("expected a saved response for this idempotency key, found none: %w", err)
		}
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return &PublishResult{Response: saved, Replayed: true}, nil
	}

	issue, err := repo.CreateIssue(ctx, tx, in.Title, in.TextContent, in.HTMLContent)
	if err != nil {
		return nil, fmt.Errorf("store newsletter issue: %w", err)
	}

	enqueued, err := repo.EnqueueDeliveryTasks(ctx, tx, issue.ID)
	if err != nil {
		return nil, fmt.Errorf("enqueue delivery tasks: %w", err)
	}

	resp := successResponse()
	if err := repo.SaveIdempotentResponse(ctx, tx, userID, key, resp); err != nil {
		return nil, fmt.Errorf("save idempotent response: %w", err)
	}

	// The single commit covering issue insert, task inserts, and cache
	// completion.
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit publish transaction: %w", err)
	}

	span.SetAttributes(
		attribute.String("issue.id", issue.ID),
		attribute.Int64("issue.recipients", enqueued),
	)
	return &PublishResult{Response: resp, Replayed: false, IssueID: issue.ID}, nil
}

// successResponse builds the externally-visible acknowledgment: a redirect
// back to the newsletter admin page. The same value is both returned to the
// first caller and persisted for replays.
func successResponse() *domain.StoredResponse {
	resp := &domain.StoredResponse{
		StatusCode: http.StatusSeeOther,
		Body:       []byte(publishedMessage),
	}
	resp.AddHeader("Location", []byte(publishedLocation))
	resp.AddHeader("Content-Type", []byte("text/plain; charset=utf-8"))
	return resp
}
