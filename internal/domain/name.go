package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxSubscriberNameLen caps subscriber names by rune length.
const MaxSubscriberNameLen = 256

// forbiddenNameRunes are characters rejected in subscriber names to keep
// stored values safe for plain-text contexts.
const forbiddenNameRunes = `/()"<>\{}`

// ValidSubscriberName reports whether raw is acceptable as a subscriber
// name: non-blank, within the length cap, and free of forbidden characters.
func ValidSubscriberName(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	if utf8.RuneCountInString(raw) > MaxSubscriberNameLen {
		return false
	}
	return !strings.ContainsAny(raw, forbiddenNameRunes)
}
