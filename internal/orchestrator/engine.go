// Package orchestrator runs resolution jobs: it selects a resolver spec, executes
// it on the job's worker pools under a global deadline, races aggregate
// participants and delivers exactly one terminal report.
package orchestrator

import (
	"context"
	"net/http"
	"time"

	"github.com/famomatic/playparse/internal/jsonapi"
	"github.com/famomatic/playparse/internal/looper"
	"github.com/famomatic/playparse/internal/policy"
	"github.com/famomatic/playparse/internal/sniff"
	"github.com/famomatic/playparse/internal/store"
	"github.com/famomatic/playparse/internal/types"
)

// DefaultTimeout is the global deadline of one job.
const DefaultTimeout = 15000 * time.Millisecond

// Poster marshals a function onto the context that owns report delivery.
// Post returns false when the context no longer accepts work.
type Poster interface {
	Post(fn func()) bool
}

// JSONResolver performs JSON resolver round trips.
type JSONResolver interface {
	Resolve(ctx context.Context, spec types.ResolverSpec, pageURL string) (*types.Result, error)
	ResolveStrict(ctx context.Context, spec types.ResolverSpec, pageURL string) (*types.Result, error)
}

// Logger receives job diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

// Config wires an Engine to its collaborators. Only Sniffer has no usable default.
type Config struct {
	Store      store.Store
	Selector   policy.Selector
	HTTPClient *http.Client
	JSON       JSONResolver
	Sniffer    sniff.Sniffer
	Poster     Poster
	Timeout    time.Duration
	Logger     Logger
}

// Engine starts jobs against one set of collaborators. It is safe for concurrent use.
type Engine struct {
	store    store.Store
	selector policy.Selector
	json     JSONResolver
	sniffer  sniff.Sniffer
	poster   Poster
	timeout  time.Duration
	logger   Logger
	ownLoop  *looper.Looper
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		store:    cfg.Store,
		selector: cfg.Selector,
		json:     cfg.JSON,
		sniffer:  cfg.Sniffer,
		poster:   cfg.Poster,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.selector == nil {
		e.selector = policy.NewSelector(cfg.Store, e.logger)
	}
	if e.json == nil {
		e.json = jsonapi.NewResolver(cfg.HTTPClient)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.poster == nil {
		e.ownLoop = looper.New(func(v any) {
			e.logger.Warnf("report callback panic: %v", v)
		})
		e.poster = e.ownLoop
	}
	return e
}

// Close releases the report looper the engine created for itself, if any.
// Reports already queued are still delivered.
func (e *Engine) Close() {
	if e.ownLoop != nil {
		e.ownLoop.Close()
	}
}

// Start selects a spec for entry and begins resolving it immediately.
// cb receives exactly one of OnSuccess or OnFailure unless the job is stopped first.
func (e *Engine) Start(entry types.PlayEntry, forceDefault bool, cb types.Callback) *Job {
	j := newJob(e, entry, cb)
	j.spec = e.selector.Select(entry, forceDefault)
	e.logger.Debugf("job %s: key=%q selected kind=%s name=%q aggregate=%t force_default=%t",
		j.id, entry.Key, j.spec.Kind, j.spec.Name, j.spec.Kind.IsAggregate(), forceDefault)
	j.run()
	return j
}
