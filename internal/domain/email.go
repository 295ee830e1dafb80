package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidEmail is returned when an address fails RFC 5322 parsing.
var ErrInvalidEmail = errors.New("invalid subscriber email")

// SubscriberEmail is a validated subscriber address.
type SubscriberEmail string

// ParseSubscriberEmail validates a raw address. Display names and address
// groups are rejected: the stored value must be a bare addr-spec.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: address is empty", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	if addr.Name != "" || addr.Address != trimmed {
		return "", fmt.Errorf("%w: %q is not a bare address", ErrInvalidEmail, raw)
	}
	return SubscriberEmail(addr.Address), nil
}

// String returns the address value.
func (e SubscriberEmail) String() string { return string(e) }
