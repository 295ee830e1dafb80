package repo

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/abd0-omar/newzletter/internal/domain"
)

func mustKey(t *testing.T, raw string) domain.IdempotencyKey {
	t.Helper()
	key, err := domain.ParseIdempotencyKey(raw)
	if err != nil {
		t.Fatalf("parse idempotency key %q: %v", raw, err)
	}
	return key
}

func TestReserveIdempotencyKey_FirstInsertWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	key := mustKey(t, "key-1")

	won, err := ReserveIdempotencyKey(ctx, db, "user-a", key)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !won {
		t.Fatal("expected first reservation to win")
	}

	won, err = ReserveIdempotencyKey(ctx, db, "user-a", key)
	if err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if won {
		t.Fatal("expected second reservation of the same key to lose")
	}
}

func TestReserveIdempotencyKey_ScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	key := mustKey(t, "shared-key")

	for _, user := range []string{"user-a", "user-b"} {
		won, err := ReserveIdempotencyKey(ctx, db, user, key)
		if err != nil {
			t.Fatalf("reserve for %s: %v", user, err)
		}
		if !won {
			t.Fatalf("expected %s to win the key in its own scope", user)
		}
	}
}

func TestSaveAndGetSavedResponse_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	key := mustKey(t, "key-rt")

	if _, err := ReserveIdempotencyKey(ctx, db, "user-a", key); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	stored := &domain.StoredResponse{StatusCode: 303, Body: []byte("see other")}
	stored.AddHeader("Location", []byte("/admin/newsletters"))
	stored.AddHeader("Set-Cookie", []byte("a=1"))
	stored.AddHeader("Set-Cookie", []byte("b=2"))

	if err := SaveIdempotentResponse(ctx, db, "user-a", key, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := GetSavedResponse(ctx, db, "user-a", key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StatusCode != 303 {
		t.Fatalf("status = %d, want 303", got.StatusCode)
	}
	if !bytes.Equal(got.Body, stored.Body) {
		t.Fatalf("body = %q, want %q", got.Body, stored.Body)
	}
	if len(got.Headers) != 3 {
		t.Fatalf("got %d headers, want 3", len(got.Headers))
	}
	for i, h := range stored.Headers {
		if got.Headers[i].Name != h.Name || !bytes.Equal(got.Headers[i].Value, h.Value) {
			t.Fatalf("header %d = %+v, want %+v", i, got.Headers[i], h)
		}
	}
}

func TestGetSavedResponse_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetSavedResponse(context.Background(), db, "user-a", mustKey(t, "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetSavedResponse_Incomplete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	key := mustKey(t, "reserved-only")

	if _, err := ReserveIdempotencyKey(ctx, db, "user-a", key); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	_, err := GetSavedResponse(ctx, db, "user-a", key)
	if !errors.Is(err, ErrResponseIncomplete) {
		t.Fatalf("err = %v, want ErrResponseIncomplete", err)
	}
}

func TestSaveIdempotentResponse_NoReservation(t *testing.T) {
	db := newTestDB(t)

	stored := &domain.StoredResponse{StatusCode: 200, Body: []byte("x")}
	err := SaveIdempotentResponse(context.Background(), db, "user-a", mustKey(t, "never-reserved"), stored)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
