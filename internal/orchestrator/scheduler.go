package orchestrator

import (
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/famomatic/playparse/internal/types"
)

// boundedWorkers hosts the job body and its deadline guard.
const boundedWorkers = 2

// Scheduler owns the two worker pools of one job.
type Scheduler struct {
	bounded *ants.Pool
	elastic *ants.Pool
}

// NewScheduler builds the bounded pool and the unbounded fan-out pool.
// onPanic receives values that escape a task's own recovery.
func NewScheduler(onPanic func(any)) (*Scheduler, error) {
	opts := []ants.Option{}
	if onPanic != nil {
		opts = append(opts, ants.WithPanicHandler(onPanic))
	}
	bounded, err := ants.NewPool(boundedWorkers, opts...)
	if err != nil {
		return nil, err
	}
	elastic, err := ants.NewPool(-1, opts...)
	if err != nil {
		bounded.Release()
		return nil, err
	}
	return &Scheduler{bounded: bounded, elastic: elastic}, nil
}

// Go runs task on the bounded pool, blocking while both workers are busy.
func (s *Scheduler) Go(task func()) error {
	return submitErr(s.bounded.Submit(task))
}

// Fan runs task on the unbounded pool.
func (s *Scheduler) Fan(task func()) error {
	return submitErr(s.elastic.Submit(task))
}

// Running reports the number of busy workers across both pools.
func (s *Scheduler) Running() int {
	return s.bounded.Running() + s.elastic.Running()
}

// Release closes both pools. Tasks already running are left to observe their
// cancellation; later submissions fail with types.ErrJobStopped.
func (s *Scheduler) Release() {
	s.bounded.Release()
	s.elastic.Release()
}

func submitErr(err error) error {
	if errors.Is(err, ants.ErrPoolClosed) {
		return fmt.Errorf("%w: %w", types.ErrJobStopped, err)
	}
	return err
}
