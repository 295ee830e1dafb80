// Package worker implements the newsletter delivery worker: a long-lived
// loop that drains the durable issue_delivery_queue one task at a time.
//
// Claiming a task deletes it, so each (issue, recipient) pair is attempted
// exactly once: a malformed address or a failed send is logged and dropped,
// never retried. Transient storage errors do not lose tasks — the claim
// itself failed — and the loop retries after a short back-off. Only process
// shutdown (context cancellation) stops the loop; a single failed attempt
// never does.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/abd0-omar/newzletter/internal/domain"
	"github.com/abd0-omar/newzletter/internal/mailer"
	"github.com/abd0-omar/newzletter/internal/repo"
)

var (
	// deliveriesSent counts emails accepted by the provider.
	deliveriesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_deliveries_sent_total",
		Help: "Total number of newsletter emails successfully handed to the provider.",
	})

	// deliveriesFailed counts sends the provider rejected; these tasks are
	// dropped, so this is the lost-delivery signal for transient outages.
	deliveriesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_deliveries_failed_total",
		Help: "Total number of newsletter emails that failed to send and were dropped.",
	})

	// deliveriesSkipped counts tasks dropped for permanently invalid
	// recipient addresses.
	deliveriesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_deliveries_skipped_total",
		Help: "Total number of delivery tasks skipped due to invalid stored addresses.",
	})
)

func init() {
	prometheus.MustRegister(deliveriesSent, deliveriesFailed, deliveriesSkipped)
}

// Outcome reports what a single Attempt accomplished.
type Outcome int

const (
	// TaskCompleted means a task was claimed and handled, whatever the send
	// outcome was.
	TaskCompleted Outcome = iota
	// EmptyQueue means there was nothing to claim.
	EmptyQueue
)

// Worker drains the delivery queue. Wire dependencies in at startup; the
// worker holds its own storage handle and sender capability and shares no
// mutable state with the HTTP layer.
type Worker struct {
	DB     *gorm.DB
	Sender mailer.Sender
	Log    zerolog.Logger

	// IdleInterval is slept after finding the queue empty; RetryInterval
	// after an errored attempt. Zero values fall back to 10s and 1s.
	IdleInterval  time.Duration
	RetryInterval time.Duration
}

// New constructs a Worker with the default polling intervals.
func New(db *gorm.DB, sender mailer.Sender, log zerolog.Logger) *Worker {
	return &Worker{
		DB:            db,
		Sender:        sender,
		Log:           log,
		IdleInterval:  10 * time.Second,
		RetryInterval: time.Second,
	}
}

// Run executes delivery attempts until ctx is cancelled. Empty-queue polls
// back off for IdleInterval; errored attempts are logged and retried after
// RetryInterval; completed tasks continue immediately.
func (w *Worker) Run(ctx context.Context) {
	idle := w.IdleInterval
	if idle <= 0 {
		idle = 10 * time.Second
	}
	retry := w.RetryInterval
	if retry <= 0 {
		retry = time.Second
	}

	w.Log.Info().Msg("delivery worker started")
	for {
		outcome, err := w.Attempt(ctx)
		switch {
		case ctx.Err() != nil:
			w.Log.Info().Msg("delivery worker stopped")
			return
		case err != nil:
			w.Log.Error().Err(err).Msg("delivery attempt failed")
			if !sleepCtx(ctx, retry) {
				return
			}
		case outcome == EmptyQueue:
			if !sleepCtx(ctx, idle) {
				return
			}
		}
	}
}

// Attempt claims and executes at most one delivery task.
//
// A claimed task is consumed regardless of its send outcome: an unparsable
// recipient or a provider failure is logged and dropped. An error return
// means the attempt itself could not run (storage unavailable, issue row
// missing) and the claimed task, if any, is lost to the same fault.
func (w *Worker) Attempt(ctx context.Context) (Outcome, error) {
	tr := otel.Tracer("worker/Delivery")
	ctx, span := tr.Start(ctx, "Attempt")
	defer span.End()

	task, err := repo.DequeueDeliveryTask(ctx, w.DB)
	if err != nil {
		return TaskCompleted, fmt.Errorf("dequeue delivery task: %w", err)
	}
	if task == nil {
		return EmptyQueue, nil
	}
	span.SetAttributes(
		attribute.String("issue.id", task.IssueID),
		attribute.String("subscriber.email", task.RecipientEmail),
	)

	addr, err := domain.ParseSubscriberEmail(task.RecipientEmail)
	if err != nil {
		deliveriesSkipped.Inc()
		w.Log.Error().
			Err(err).
			Str("issue_id", task.IssueID).
			Str("email", task.RecipientEmail).
			Msg("skipping a confirmed subscriber, their stored contact details are invalid")
		return TaskCompleted, nil
	}

	issue, err := repo.GetIssue(ctx, w.DB, task.IssueID)
	if err != nil {
		// Issues are created before any of their tasks, so this lookup
		// cannot legitimately miss.
		return TaskCompleted, fmt.Errorf("load issue %s for delivery: %w", task.IssueID, err)
	}

	email := &mailer.Email{
		To:      addr.String(),
		Subject: issue.Title,
		HTML:    issue.HTMLContent,
		Text:    issue.TextContent,
	}
	if err := w.Sender.Send(ctx, email); err != nil {
		deliveriesFailed.Inc()
		w.Log.Error().
			Err(err).
			Str("issue_id", task.IssueID).
			Str("email", addr.String()).
			Msg("failed to deliver issue to a confirmed subscriber, skipping")
		return TaskCompleted, nil
	}

	deliveriesSent.Inc()
	return TaskCompleted, nil
}

// sleepCtx sleeps for d or until ctx is cancelled; it reports whether the
// caller should keep running.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
