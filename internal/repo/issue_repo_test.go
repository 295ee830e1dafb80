package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCreateAndGetIssue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	issue, err := CreateIssue(ctx, db, "Launch", "plain body", "<p>html body</p>")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if issue.ID == "" {
		t.Fatal("expected generated id")
	}
	if issue.PublishedAt.IsZero() {
		t.Fatal("expected publish timestamp")
	}

	got, err := GetIssue(ctx, db, issue.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Launch" || got.TextContent != "plain body" || got.HTMLContent != "<p>html body</p>" {
		t.Fatalf("issue content mismatch: %+v", got)
	}
}

func TestGetIssue_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetIssue(context.Background(), db, uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
