package common

import (
	"github.com/google/uuid"
)

// NewSubscriberID generates a unique subscriber document ID with the "sub_" prefix
// Format: sub_<uuid>
func NewSubscriberID() string {
	return "sub_" + uuid.New().String()
}

// NewRequestID generates a short request correlation ID for log events
func NewRequestID() string {
	return uuid.New().String()[:8]
}
