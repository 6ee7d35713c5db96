package orchestrator

import (
	"sync"
	"sync/atomic"

	"github.com/famomatic/playparse/internal/types"
)

// Sink holds the caller callback of one job and admits a single report.
type Sink struct {
	claimed atomic.Bool

	mu sync.Mutex
	cb *types.Callback
}

// NewSink wraps cb.
func NewSink(cb types.Callback) *Sink {
	return &Sink{cb: &cb}
}

// Claim reserves the one report of the job. Only the first call, and only
// before Clear, returns true.
func (s *Sink) Claim() bool {
	return s.claimed.CompareAndSwap(false, true)
}

// Take removes and returns the callback. ok is false once it was taken or cleared.
func (s *Sink) Take() (cb types.Callback, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cb == nil {
		return types.Callback{}, false
	}
	cb = *s.cb
	s.cb = nil
	return cb, true
}

// Clear drops the callback and disables further claims.
func (s *Sink) Clear() {
	s.claimed.Store(true)
	s.mu.Lock()
	s.cb = nil
	s.mu.Unlock()
}
