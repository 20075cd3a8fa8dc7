package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// UserMessager is implemented by errors that carry a message fit for display.
type UserMessager interface {
	UserMessage() string
}

// ErrorMessage turns any fetch error into the text shown to the user.
// Errors without a user message fall back to FallbackErrorMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackErrorMessage
}
