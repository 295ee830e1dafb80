// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the storage operations behind the
// idempotency cache: reserving a key, saving the response that completed it,
// and looking up a saved response for replay.
//
// Reserve and SaveIdempotentResponse are meant to run on the same open
// transaction handle; the unique (user_id, idempotency_key) primary key is
// the only concurrency control involved.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abd0-omar/newzletter/internal/domain"
)

// ErrResponseIncomplete indicates an idempotency row that was reserved but
// never completed: its owner crashed between reserving the key and
// committing. Replays of such a key cannot be served.
var ErrResponseIncomplete = errors.New("idempotency record has no saved response")

// ReserveIdempotencyKey attempts to insert a reserved record for
// (userID, key) with ON CONFLICT DO NOTHING semantics. It reports true when
// this caller won the reservation and now owns the in-flight execution;
// false means another execution already reserved or completed the key.
//
// tx must be an open transaction: the reservation only becomes visible to
// other requests once the caller commits.
func ReserveIdempotencyKey(ctx context.Context, tx *gorm.DB, userID string, key domain.IdempotencyKey) (bool, error) {
	rec := &domain.Idempotency{
		UserID:         userID,
		IdempotencyKey: key.String(),
		CreatedAt:      time.Now().UTC(),
	}
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetSavedResponse loads the completed response stored for (userID, key).
//
// It returns ErrNotFound when no record exists and ErrResponseIncomplete when
// the record exists but is still (or forever) missing its response columns.
// Callers on the replay path treat both as data-integrity faults: a lost
// insert race guarantees the row exists, and this package never deletes it.
func GetSavedResponse(ctx context.Context, db *gorm.DB, userID string, key domain.IdempotencyKey) (*domain.StoredResponse, error) {
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key.String()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !rec.Completed() {
		return nil, ErrResponseIncomplete
	}
	return domain.DecodeStoredResponse(*rec.ResponseStatusCode, rec.ResponseHeaders, rec.ResponseBody)
}

// SaveIdempotentResponse writes the serialized response into the reserved
// record. It must run on the same transaction that won the reservation; the
// caller's commit then publishes the completed record atomically with the
// side effects it covers.
func SaveIdempotentResponse(ctx context.Context, tx *gorm.DB, userID string, key domain.IdempotencyKey, resp *domain.StoredResponse) error {
	headers, err := resp.EncodeHeaders()
	if err != nil {
		return err
	}
	status := int16(resp.StatusCode)
	res := tx.WithContext(ctx).
		Model(&domain.Idempotency{}).
		Where("user_id = ? AND idempotency_key = ?", userID, key.String()).
		Updates(map[string]any{
			"response_status_code": status,
			"response_headers":     headers,
			"response_body":        resp.Body,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
