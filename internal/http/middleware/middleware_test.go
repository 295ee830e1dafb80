package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func serve(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, nil)
	rid := w.Header().Get("X-Request-ID")
	if rid == "" {
		t.Fatal("expected a generated request id")
	}
	if _, err := uuid.Parse(rid); err != nil {
		t.Fatalf("generated id %q is not a UUID: %v", rid, err)
	}
}

func TestRequestID_ReusesIncoming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, map[string]string{"X-Request-ID": "caller-id"})
	if got := w.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Fatalf("X-Request-ID = %q, want caller-id", got)
	}
}

func TestRecovery_ConvertsPanicsTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/ping", func(c *gin.Context) { panic("boom") })

	w := serve(r, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v; raw = %s", err, w.Body.String())
	}
	if body["code"] != "internal_error" {
		t.Fatalf("code = %v, want internal_error", body["code"])
	}
	if body["request_id"] == "" {
		t.Fatal("expected request_id in the error envelope")
	}
}

func TestRateLimiter_EnforcesBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 2) // no refill: exactly two requests pass
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := serve(r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, w.Code)
		}
	}
	w := serve(r, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRateLimiter_KeyedPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0, 1)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-User-ID"); u != "" {
			c.Set("userID", u)
		}
	})
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, map[string]string{"X-User-ID": "alice"}); w.Code != http.StatusOK {
		t.Fatalf("alice first request status = %d", w.Code)
	}
	if w := serve(r, map[string]string{"X-User-ID": "alice"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second request status = %d, want 429", w.Code)
	}
	// A different identity gets its own bucket.
	if w := serve(r, map[string]string{"X-User-ID": "bob"}); w.Code != http.StatusOK {
		t.Fatalf("bob first request status = %d, want 200", w.Code)
	}
}
