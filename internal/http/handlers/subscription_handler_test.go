package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/abd0-omar/newzletter/internal/domain"
)

func TestSubscribe_Created(t *testing.T) {
	r, db := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/subscriptions",
		map[string]string{"name": "Le Guin", "email": "ursula@example.com"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", w.Code, w.Body.String())
	}
	var resp SubscribeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "subscribed" {
		t.Fatalf("status field = %q", resp.Status)
	}

	var sub domain.Subscription
	if err := db.Where("email = ?", "ursula@example.com").First(&sub).Error; err != nil {
		t.Fatalf("load subscriber: %v", err)
	}
	if sub.Status != domain.SubscriptionStatusPending {
		t.Fatalf("stored status = %q, want pending", sub.Status)
	}
}

func TestSubscribe_DuplicateLooksIdentical(t *testing.T) {
	r, _ := newTestRouter(t)

	body := map[string]string{"name": "Le Guin", "email": "dup@example.com"}
	first := doJSON(t, r, http.MethodPost, "/subscriptions", body, nil)
	second := doJSON(t, r, http.MethodPost, "/subscriptions", body, nil)

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("statuses = %d, %d; want 201, 201", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("duplicate response %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestSubscribe_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"name": "x"}},
		{"missing name", map[string]string{"email": "x@example.com"}},
		{"invalid email", map[string]string{"name": "x", "email": "nope"}},
		{"forbidden name rune", map[string]string{"name": "a<b>", "email": "x@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/subscriptions", tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestConfirmSubscription(t *testing.T) {
	r, db := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/subscriptions",
		map[string]string{"name": "Pending", "email": "pending@example.com"}, nil)

	var sub domain.Subscription
	if err := db.Where("email = ?", "pending@example.com").First(&sub).Error; err != nil {
		t.Fatalf("load subscriber: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/subscriptions/"+sub.ID+"/confirm", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body = %s", w.Code, w.Body.String())
	}

	if err := db.Where("id = ?", sub.ID).First(&sub).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sub.Status != domain.SubscriptionStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", sub.Status)
	}
}

func TestConfirmSubscription_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/subscriptions/"+uuid.NewString()+"/confirm", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}
}

func TestConfirmSubscription_MalformedID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/subscriptions/not-a-uuid/confirm", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}
}
