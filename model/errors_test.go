package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode string
		contains     string
	}{
		{
			name:         "Rate limit",
			err:          NewUpstreamError(KindRateLimit, 403, errors.New("API rate limit exceeded")),
			expectedCode: "RATE_LIMIT_EXCEEDED",
			contains:     "use_cache",
		},
		{
			name:         "Authentication wrapped",
			err:          fmt.Errorf("list repositories: %w", NewUpstreamError(KindAuthentication, 401, errors.New("Bad credentials"))),
			expectedCode: "AUTHENTICATION_ERROR",
			contains:     "GITHUB_TOKEN",
		},
		{
			name:         "Not found",
			err:          NewUpstreamError(KindNotFound, 404, errors.New("repository missing")),
			expectedCode: "NOT_FOUND",
			contains:     "repository missing",
		},
		{
			name:         "Invalid argument keeps the cause only",
			err:          InvalidArgument("repository_name is required"),
			expectedCode: "INVALID_ARGUMENT",
			contains:     "repository_name is required",
		},
		{
			name:         "Untyped error",
			err:          errors.New("connection reset"),
			expectedCode: "FETCH_ERROR",
			contains:     "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewAPIError(tt.err)
			assert.Equal(t, tt.expectedCode, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.contains)
		})
	}

	assert.Equal(t, "repository_name is required", NewAPIError(InvalidArgument("repository_name is required")).Message)
}

func TestEnvelopes(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	success := NewSuccessEnvelope([]string{"a"}, true, now)
	assert.True(t, success.Success)
	assert.True(t, success.Cached)
	assert.Nil(t, success.Error)
	assert.Equal(t, "2024-01-02T02:04:05Z", success.Timestamp)

	failure := NewFailureEnvelope(NewUpstreamError(KindNotFound, 404, errors.New("nope")), now)
	assert.False(t, failure.Success)
	assert.Nil(t, failure.Data)
	assert.Equal(t, "NOT_FOUND", failure.Error.Code)
	assert.Equal(t, success.Timestamp, failure.Timestamp)
}
