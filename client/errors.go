package client

import (
	"context"
	"errors"

	"github.com/famomatic/playparse/internal/types"
)

var (
	// ErrInvalidInput indicates a play entry without any URL to resolve.
	ErrInvalidInput = errors.New("invalid input")
	// ErrParseFailed indicates the job finished without a playable URL.
	ErrParseFailed = errors.New("parse failed")
	// ErrClosed indicates the client was closed.
	ErrClosed = errors.New("client closed")

	// ErrNetwork indicates a transport failure or unexpected status.
	ErrNetwork = types.ErrNetwork
	// ErrMalformedResponse indicates a resolver body of the wrong shape.
	ErrMalformedResponse = types.ErrMalformedResponse
	// ErrEmptyAggregate indicates no resolver matched an aggregate flag.
	ErrEmptyAggregate = types.ErrEmptyAggregate
	// ErrDeadline indicates the global job deadline elapsed.
	ErrDeadline = types.ErrDeadline
)

// ErrorCategory is a stable error class for callers and CLI exit codes.
type ErrorCategory string

const (
	ErrorCategoryNone              ErrorCategory = ""
	ErrorCategoryInvalidInput      ErrorCategory = "invalid_input"
	ErrorCategoryParseFailed       ErrorCategory = "parse_failed"
	ErrorCategoryCanceled          ErrorCategory = "canceled"
	ErrorCategoryNetwork           ErrorCategory = "network"
	ErrorCategoryMalformedResponse ErrorCategory = "malformed_response"
	ErrorCategoryEmptyAggregate    ErrorCategory = "empty_aggregate"
	ErrorCategoryDeadline          ErrorCategory = "deadline"
	ErrorCategoryUnknown           ErrorCategory = "unknown"
)

// ClassifyError maps an error to its ErrorCategory.
func ClassifyError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, ErrInvalidInput):
		return ErrorCategoryInvalidInput
	case errors.Is(err, ErrParseFailed):
		return ErrorCategoryParseFailed
	case errors.Is(err, context.Canceled), errors.Is(err, ErrClosed):
		return ErrorCategoryCanceled
	case errors.Is(err, ErrMalformedResponse):
		return ErrorCategoryMalformedResponse
	case errors.Is(err, ErrNetwork):
		return ErrorCategoryNetwork
	case errors.Is(err, ErrEmptyAggregate):
		return ErrorCategoryEmptyAggregate
	case errors.Is(err, ErrDeadline), errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryDeadline
	default:
		return ErrorCategoryUnknown
	}
}
