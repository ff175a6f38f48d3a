package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response from the upstream API. Message is
// human-readable and safe to surface to the dashboard.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(status int, serverMessage string) *StatusError {
	return &StatusError{Status: status, Message: statusMessage(status, serverMessage)}
}

func statusMessage(status int, serverMessage string) string {
	switch status {
	case http.StatusBadRequest:
		if serverMessage != "" {
			return serverMessage
		}
		return "Invalid request data. Please check all fields."
	case http.StatusUnauthorized:
		return "Authentication failed. Please log in again."
	case http.StatusForbidden:
		return "Access denied. Insufficient permissions."
	case http.StatusNotFound:
		return "Requested resource was not found."
	case http.StatusConflict:
		if serverMessage != "" {
			return serverMessage
		}
		return "Request conflicts with existing data."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	default:
		return fmt.Sprintf("request failed with status %d", status)
	}
}

// StatusOf returns the upstream HTTP status carried by err, or 0 when err
// is not a StatusError (network failure, decode failure).
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
