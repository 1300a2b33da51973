package model

import "time"

// Envelope is the uniform result of every tool invocation
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Cached    bool      `json:"cached"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// NewSuccessEnvelope wraps data, cached reports whether the cache was allowed
func NewSuccessEnvelope(data any, cached bool, now time.Time) Envelope {
	return Envelope{
		Success:   true,
		Data:      data,
		Cached:    cached,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// NewFailureEnvelope converts err into a code and message
func NewFailureEnvelope(err error, now time.Time) Envelope {
	apiErr := NewAPIError(err)

	return Envelope{
		Success:   false,
		Error:     &apiErr,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
