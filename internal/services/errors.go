// Package services defines the business logic for publishing newsletter
// issues and managing subscriptions. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrEmptyTitle is returned when a publish request carries no title.
	ErrEmptyTitle = errors.New("issue title is empty")

	// ErrEmptyContent is returned when a publish request is missing either
	// the text or the HTML body.
	ErrEmptyContent = errors.New("issue content is empty")

	// ErrInvalidName is returned when a subscriber name fails validation.
	ErrInvalidName = errors.New("invalid subscriber name")

	// ErrSubscriptionNotFound indicates that the referenced subscription
	// does not exist.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
