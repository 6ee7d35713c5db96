package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/famomatic/playparse/internal/sniff"
	"github.com/famomatic/playparse/internal/types"
)

// Job is one resolution run. It owns its worker pools and every sniff handle it
// starts; all of them are released when the job stops.
type Job struct {
	id     string
	engine *Engine
	entry  types.PlayEntry
	spec   types.ResolverSpec

	ctx    context.Context
	cancel context.CancelFunc
	sched  *Scheduler
	sink   *Sink

	handles  *xsync.MapOf[uint64, sniff.Handle]
	handleID atomic.Uint64

	teardownOnce sync.Once
}

func newJob(e *Engine, entry types.PlayEntry, cb types.Callback) *Job {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(types.WithJobID(context.Background(), id))
	return &Job{
		id:      id,
		engine:  e,
		entry:   entry,
		ctx:     ctx,
		cancel:  cancel,
		sink:    NewSink(cb),
		handles: xsync.NewMapOf[uint64, sniff.Handle](),
	}
}

// ID returns the job id used in logs.
func (j *Job) ID() string { return j.id }

// Spec returns the resolver spec selected for the job.
func (j *Job) Spec() types.ResolverSpec { return j.spec.Clone() }

// Done is closed once the job has torn down, after a report or Stop.
func (j *Job) Done() <-chan struct{} { return j.ctx.Done() }

// Stop cancels the job. No report reaches the caller after Stop returns, except
// one already being delivered. Stop is idempotent and may be called from a callback.
func (j *Job) Stop() {
	j.sink.Clear()
	j.teardown()
}

func (j *Job) teardown() {
	j.teardownOnce.Do(func() {
		j.cancel()
		if j.sched != nil {
			j.sched.Release()
		}
		j.stopHandles()
		j.engine.logger.Debugf("job %s: stopped", j.id)
	})
}

func (j *Job) stopHandles() {
	j.handles.Range(func(id uint64, h sniff.Handle) bool {
		if _, loaded := j.handles.LoadAndDelete(id); loaded {
			h.Stop(true)
		}
		return true
	})
}

func (j *Job) run() {
	sched, err := NewScheduler(func(v any) {
		j.engine.logger.Warnf("job %s: pool task panic: %v", j.id, v)
	})
	if err != nil {
		j.fail(fmt.Errorf("create worker pools: %w", err))
		return
	}
	j.sched = sched
	if err := j.sched.Go(j.guard); err != nil {
		j.fail(err)
	}
}

// guard runs the dispatch on the second bounded worker and enforces the deadline
// until the job reaches a terminal state.
func (j *Job) guard() {
	timer := time.NewTimer(j.engine.timeout)
	defer timer.Stop()

	result := make(chan error, 1)
	if err := j.sched.Go(func() { result <- j.safeDispatch() }); err != nil {
		j.fail(err)
		return
	}
	for {
		select {
		case err := <-result:
			if err != nil {
				j.fail(err)
				return
			}
			// Sniff hand-offs return before the sniffer reports.
			result = nil
		case <-j.ctx.Done():
			return
		case <-timer.C:
			j.fail(types.ErrDeadline)
			return
		}
	}
}

func (j *Job) safeDispatch() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return j.dispatch()
}

func (j *Job) dispatch() error {
	if err := j.ctx.Err(); err != nil {
		return nil
	}
	switch j.spec.Kind {
	case types.KindSniff:
		j.startSniff(j.entry.Key, j.spec, types.Callback{
			OnSuccess: func(headers map[string]string, url, _ string) {
				j.reportSuccess(headers, url, "")
			},
			OnFailure: func() { j.fail(errSniffFailed) },
		})
		return nil
	case types.KindJSON:
		res, err := j.engine.json.Resolve(j.ctx, j.spec, j.entry.PageURL)
		if err != nil {
			return err
		}
		j.reportSuccess(res.Headers, res.URL, "")
		return nil
	case types.KindJSONAggregate:
		return j.race(j.jsonCandidates())
	case types.KindWebAggregate:
		return j.race(j.sniffCandidates())
	default:
		return fmt.Errorf("unsupported resolver kind %s", j.spec.Kind)
	}
}

func (j *Job) race(candidates []Candidate) error {
	j.engine.logger.Debugf("job %s: racing %d %s participant(s) flag=%q busy_workers=%d",
		j.id, len(candidates), j.spec.Kind, j.entry.Flag, j.sched.Running())
	err := Race(j.ctx, j.sched.Fan, candidates, func(res *types.Result) {
		j.reportSuccess(res.Headers, res.URL, res.SourceName)
	})
	var all *AllResolversFailedError
	if errors.As(err, &all) {
		for _, a := range all.Attempts {
			j.engine.logger.Warnf("job %s: %v", j.id, a)
		}
	}
	if j.ctx.Err() != nil {
		return nil
	}
	return err
}

func (j *Job) listSpecs(kind types.Kind) []types.ResolverSpec {
	if j.engine.store == nil {
		return nil
	}
	return j.engine.store.ListSpecs(kind, j.entry.Flag)
}

func (j *Job) jsonCandidates() []Candidate {
	specs := j.listSpecs(types.KindJSON)
	out := make([]Candidate, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		out = append(out, Candidate{
			Name: spec.Name,
			Run: func(ctx context.Context, done func(*types.Result, error)) {
				done(j.engine.json.ResolveStrict(ctx, spec, j.entry.PageURL))
			},
		})
	}
	return out
}

func (j *Job) sniffCandidates() []Candidate {
	specs := j.listSpecs(types.KindSniff)
	out := make([]Candidate, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		out = append(out, Candidate{
			Name: spec.Name,
			Run: func(_ context.Context, done func(*types.Result, error)) {
				j.startSniff("", spec, types.Callback{
					OnSuccess: func(headers map[string]string, url, _ string) {
						done(&types.Result{Headers: headers, URL: url, SourceName: spec.Name}, nil)
					},
					OnFailure: func() { done(nil, errSniffFailed) },
				})
			},
		})
	}
	return out
}

// startSniff hands spec to the sniffer and tracks the returned handle. A handle
// registered after teardown began is stopped on the spot.
func (j *Job) startSniff(key string, spec types.ResolverSpec, cb types.Callback) {
	if j.engine.sniffer == nil {
		j.engine.logger.Warnf("job %s: no sniffer configured", j.id)
		if cb.OnFailure != nil {
			cb.OnFailure()
		}
		return
	}
	if j.ctx.Err() != nil {
		return
	}
	h := j.engine.sniffer.Start(j.ctx, key, spec.Name, spec.Target(j.entry.PageURL), spec.Headers, cb)
	if h == nil {
		return
	}
	id := j.handleID.Add(1)
	j.handles.Store(id, h)
	if j.ctx.Err() != nil {
		if _, loaded := j.handles.LoadAndDelete(id); loaded {
			h.Stop(true)
		}
	}
}

func (j *Job) reportSuccess(headers map[string]string, url, sourceName string) {
	if !j.sink.Claim() {
		return
	}
	j.engine.logger.Debugf("job %s: success url=%s source=%q", j.id, url, sourceName)
	j.teardown()
	j.deliver(func(cb types.Callback) {
		if cb.OnSuccess != nil {
			cb.OnSuccess(headers, url, sourceName)
		}
	})
}

func (j *Job) fail(err error) {
	if !j.sink.Claim() {
		return
	}
	j.engine.logger.Debugf("job %s: failed: %v", j.id, err)
	j.teardown()
	j.deliver(func(cb types.Callback) {
		if cb.OnFailure != nil {
			cb.OnFailure()
		}
	})
}

// deliver runs fn with the caller callback on the report context, then stops the job.
func (j *Job) deliver(fn func(types.Callback)) {
	post := func() {
		if cb, ok := j.sink.Take(); ok {
			fn(cb)
		}
		j.Stop()
	}
	if !j.engine.poster.Post(post) {
		post()
	}
}
