package orchestrator

import (
	"fmt"

	"github.com/famomatic/playparse/internal/types"
)

// AttemptError captures one race participant failure.
type AttemptError struct {
	Resolver string
	Err      error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("resolver %s: %v", e.Resolver, e.Err)
}

// AllResolversFailedError is returned when no race participant succeeded.
type AllResolversFailedError struct {
	Attempts []AttemptError
}

func (e *AllResolversFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "all resolvers failed"
	}
	return fmt.Sprintf("all resolvers failed: %d attempt(s)", len(e.Attempts))
}

// PanicError wraps a value recovered from a pool task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("resolver task panic: %v", e.Value)
}

// errSniffFailed is recorded for a sniff participant that reported failure.
var errSniffFailed = fmt.Errorf("%w: sniffer reported failure", types.ErrNetwork)
