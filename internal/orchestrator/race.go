package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/famomatic/playparse/internal/types"
)

// Candidate is one race participant. Run must call done exactly once, either
// before returning or later from another goroutine; extra calls are ignored.
type Candidate struct {
	Name string
	Run  func(ctx context.Context, done func(*types.Result, error))
}

// latch is a counting completion signal closed when the count reaches zero.
type latch struct {
	remaining atomic.Int64
	zero      chan struct{}
}

func newLatch(n int) *latch {
	l := &latch{zero: make(chan struct{})}
	l.remaining.Store(int64(n))
	if n <= 0 {
		close(l.zero)
	}
	return l
}

func (l *latch) countDown() {
	if l.remaining.Add(-1) == 0 {
		close(l.zero)
	}
}

func (l *latch) done() <-chan struct{} { return l.zero }

// errNoResult is recorded for a participant that completed without a result or error.
var errNoResult = errors.New("participant completed without result")

// Race starts every candidate through fan, hands the first successful result to
// onWin and waits for all candidates to finish. It returns nil when a candidate
// won, *AllResolversFailedError when none did, types.ErrEmptyAggregate for an
// empty field, or ctx.Err() when ctx ends first.
func Race(ctx context.Context, fan func(func()) error, candidates []Candidate, onWin func(*types.Result)) error {
	if len(candidates) == 0 {
		return types.ErrEmptyAggregate
	}

	var (
		won      atomic.Bool
		mu       sync.Mutex
		attempts []AttemptError
	)
	finished := newLatch(len(candidates))

	for _, c := range candidates {
		c := c
		var once sync.Once
		done := func(res *types.Result, err error) {
			once.Do(func() {
				defer finished.countDown()
				if err == nil && res != nil {
					if won.CompareAndSwap(false, true) {
						onWin(res)
					}
					return
				}
				if err == nil {
					err = errNoResult
				}
				mu.Lock()
				attempts = append(attempts, AttemptError{Resolver: c.Name, Err: err})
				mu.Unlock()
			})
		}
		task := func() {
			defer func() {
				if r := recover(); r != nil {
					done(nil, &PanicError{Value: r})
				}
			}()
			rctx := types.WithResolverName(ctx, c.Name)
			c.Run(rctx, done)
		}
		if err := fan(task); err != nil {
			done(nil, err)
		}
	}

	select {
	case <-finished.done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if won.Load() {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	return &AllResolversFailedError{Attempts: append([]AttemptError(nil), attempts...)}
}
