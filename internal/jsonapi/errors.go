package jsonapi

import (
	"fmt"

	"github.com/famomatic/playparse/internal/types"
)

// HTTPStatusError indicates a resolver or verification response other than 200.
type HTTPStatusError struct {
	Resolver   string
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("resolver http status=%d resolver=%s url=%s", e.StatusCode, e.Resolver, e.URL)
}

func (e *HTTPStatusError) Unwrap() error { return types.ErrNetwork }
