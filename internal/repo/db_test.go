package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abd0-omar/newzletter/internal/domain"
)

// newTestDB opens a unique in-memory database per test (avoids schema
// leakage across tests) and migrates all domain models.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedSubscriber inserts a subscriber row directly.
func seedSubscriber(t *testing.T, db *gorm.DB, email, status string) *domain.Subscription {
	t.Helper()
	sub := &domain.Subscription{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Test Subscriber",
		Status:       status,
		SubscribedAt: time.Now().UTC(),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed subscriber %s: %v", email, err)
	}
	return sub
}

// seedIssue inserts a newsletter issue row directly.
func seedIssue(t *testing.T, db *gorm.DB) *domain.NewsletterIssue {
	t.Helper()
	issue := &domain.NewsletterIssue{
		ID:          uuid.NewString(),
		Title:       "Issue #1",
		TextContent: "plain text",
		HTMLContent: "<p>html</p>",
		PublishedAt: time.Now().UTC(),
	}
	if err := db.Create(issue).Error; err != nil {
		t.Fatalf("seed issue: %v", err)
	}
	return issue
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := newTestDB(t)
	for _, table := range []string{"subscriptions", "newsletter_issues", "issue_delivery_queue", "idempotency"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %q to exist", table)
		}
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	if _, err := OpenSQLite("/definitely/not/a/dir/app.db"); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	path := t.TempDir() + "/app.db"
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if _, err := CountDeliveryTasks(context.Background(), db); err != nil {
		t.Fatalf("count on fresh db: %v", err)
	}
}
