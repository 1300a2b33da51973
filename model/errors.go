package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the user-facing classification of a failure
type ErrorKind string

const (
	KindConfiguration   ErrorKind = "CONFIGURATION_ERROR"
	KindAuthentication  ErrorKind = "AUTHENTICATION_ERROR"
	KindRateLimit       ErrorKind = "RATE_LIMIT_EXCEEDED"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindUnknownTool     ErrorKind = "UNKNOWN_TOOL"
	KindFetch           ErrorKind = "FETCH_ERROR"
)

// UpstreamError is returned by the fetcher for every failed GitHub call
type UpstreamError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err with a kind
func NewUpstreamError(kind ErrorKind, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Kind: kind, StatusCode: statusCode, Err: err}
}

// InvalidArgument builds an argument validation failure
func InvalidArgument(format string, args ...any) error {
	return &UpstreamError{Kind: KindInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind carried by err, FETCH_ERROR when none
func KindOf(err error) ErrorKind {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Kind
	}

	return KindFetch
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewAPIError(errReason error) APIError {
	switch kind := KindOf(errReason); kind {
	case KindRateLimit:
		return APIError{
			Code:    string(kind),
			Message: "github rate limit reached. wait a few minutes and try again, or call the tool with use_cache enabled",
		}

	case KindAuthentication:
		return APIError{
			Code:    string(kind),
			Message: "github rejected the credentials. check that GITHUB_TOKEN is valid and not expired",
		}

	case KindNotFound:
		return APIError{
			Code:    string(kind),
			Message: "requested resource was not found on github: " + errReason.Error(),
		}

	case KindInvalidArgument, KindUnknownTool:
		return APIError{
			Code:    string(kind),
			Message: causeOf(errReason).Error(),
		}

	case KindConfiguration:
		return APIError{
			Code:    string(kind),
			Message: errReason.Error(),
		}

	default:
		return APIError{
			Code:    string(KindFetch),
			Message: "unable to fetch data from github: " + errReason.Error(),
		}
	}
}

// causeOf returns the error wrapped by the first UpstreamError in the chain
func causeOf(err error) error {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.Err != nil {
		return upstreamErr.Err
	}

	return err
}
