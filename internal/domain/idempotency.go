// Package domain defines the core persistence models for the newsletter
// service. This file holds the idempotency record and the framework-neutral
// representation of a stored HTTP response that can be replayed for retried
// requests.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// MaxIdempotencyKeyLen caps the accepted client-supplied key length.
const MaxIdempotencyKeyLen = 50

// idempotencyKeyRE restricts keys to an RFC-7230-ish token alphabet.
var idempotencyKeyRE = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// ErrInvalidIdempotencyKey is returned by ParseIdempotencyKey for keys that
// fail validation. It is a client error: no storage is touched.
var ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")

// IdempotencyKey is a validated client-supplied retry token.
type IdempotencyKey string

// ParseIdempotencyKey validates a raw key: non-empty, at most
// MaxIdempotencyKeyLen bytes, restricted to a conservative token alphabet.
func ParseIdempotencyKey(raw string) (IdempotencyKey, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: key is empty", ErrInvalidIdempotencyKey)
	}
	if len(raw) > MaxIdempotencyKeyLen {
		return "", fmt.Errorf("%w: key exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLen)
	}
	if !idempotencyKeyRE.MatchString(raw) {
		return "", fmt.Errorf("%w: key contains forbidden characters", ErrInvalidIdempotencyKey)
	}
	return IdempotencyKey(raw), nil
}

// String returns the raw key value.
func (k IdempotencyKey) String() string { return string(k) }

// Idempotency is the durable record backing safe retries of the publish
// endpoint, keyed by (user_id, idempotency_key).
//
// A row lives in one of two states: reserved (response columns NULL, the
// owning request is still in flight) or completed (response columns
// populated). The compound primary key is the sole concurrency guard: the
// first insert wins the reservation, every other request falls onto the
// lookup-and-replay path.
type Idempotency struct {
	UserID             string    `gorm:"type:varchar(64);primaryKey"`
	IdempotencyKey     string    `gorm:"type:varchar(50);primaryKey"`
	CreatedAt          time.Time `gorm:"not null"`
	ResponseStatusCode *int16    `gorm:""`
	ResponseHeaders    []byte    `gorm:"type:blob"`
	ResponseBody       []byte    `gorm:"type:blob"`
}

// TableName returns the database table name for Idempotency.
func (Idempotency) TableName() string { return "idempotency" }

// Completed reports whether the record carries a saved response.
func (i *Idempotency) Completed() bool { return i.ResponseStatusCode != nil }

// HeaderPair is one response header entry. Values are raw bytes so non-text
// header values survive the round trip; JSON encodes them as base64.
type HeaderPair struct {
	Name  string `json:"name"`
	Value []byte `json:"value"`
}

// StoredResponse is the tagged, framework-neutral form of an HTTP response
// persisted by the idempotency cache. Replaying it must be byte-identical to
// the original: status code, header pairs in order (duplicates allowed), and
// the exact body bytes.
type StoredResponse struct {
	StatusCode int
	Headers    []HeaderPair
	Body       []byte
}

// AddHeader appends a header pair, preserving insertion order and allowing
// repeated names.
func (r *StoredResponse) AddHeader(name string, value []byte) {
	r.Headers = append(r.Headers, HeaderPair{Name: name, Value: value})
}

// EncodeHeaders serializes the header pairs for persistence.
func (r *StoredResponse) EncodeHeaders() ([]byte, error) {
	return json.Marshal(r.Headers)
}

// DecodeStoredResponse reconstructs a StoredResponse from its persisted
// columns. It fails if the header payload is not valid JSON.
func DecodeStoredResponse(statusCode int16, headers, body []byte) (*StoredResponse, error) {
	var pairs []HeaderPair
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &pairs); err != nil {
			return nil, fmt.Errorf("decode stored response headers: %w", err)
		}
	}
	return &StoredResponse{
		StatusCode: int(statusCode),
		Headers:    pairs,
		Body:       body,
	}, nil
}
