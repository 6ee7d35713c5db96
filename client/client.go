package client

import (
	"context"
	"sync"

	"github.com/famomatic/playparse/internal/looper"
	"github.com/famomatic/playparse/internal/orchestrator"
	"github.com/famomatic/playparse/internal/sniff"
)

// Client starts resolution jobs. It is safe for concurrent use.
type Client struct {
	config Config
	engine *orchestrator.Engine
	logger Logger

	// Owned collaborators, released by Close.
	loop    *looper.Looper
	sniffer *sniff.PageSniffer

	closeOnce sync.Once
	closed    chan struct{}
}

// Job is a running resolution.
type Job struct {
	inner *orchestrator.Job
}

// ID returns the job id used in logs.
func (j *Job) ID() string { return j.inner.ID() }

// Spec returns the resolver spec the job selected.
func (j *Job) Spec() ResolverSpec { return j.inner.Spec() }

// Stop cancels the job. It is idempotent and safe to call from a callback.
func (j *Job) Stop() { j.inner.Stop() }

// Done is closed once the job has released its resources.
func (j *Job) Done() <-chan struct{} { return j.inner.Done() }

// New creates a new resolution client.
func New(config Config) *Client {
	return NewClient(config)
}

// NewClient creates a new resolution client.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient(config.ProxyURL, config.CookieJar)
	} else if config.CookieJar != nil && config.HTTPClient.Jar == nil {
		config.HTTPClient.Jar = config.CookieJar
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	c := &Client{
		config: config,
		logger: logger,
		closed: make(chan struct{}),
	}

	poster := config.Poster
	if poster == nil {
		c.loop = looper.New(func(v any) {
			logger.Warnf("callback panic: %v", v)
		})
		poster = c.loop
	}
	sniffer := config.Sniffer
	if sniffer == nil {
		c.sniffer = sniff.NewPageSniffer(sniff.PageConfig{
			HTTPClient:     config.HTTPClient,
			SessionTimeout: config.SniffTimeout,
			UserAgent:      config.UserAgent,
			Logger:         logger,
		})
		sniffer = c.sniffer
	}

	c.engine = orchestrator.NewEngine(config.toEngineConfig(config.HTTPClient, sniffer, poster, logger))
	return c
}

// Start resolves entry in the background. Exactly one of cb.OnSuccess or
// cb.OnFailure runs, on the configured Poster, unless the job is stopped first.
// forceDefault selects the store's default resolver regardless of the entry.
func (c *Client) Start(entry PlayEntry, forceDefault bool, cb Callback) *Job {
	return &Job{inner: c.engine.Start(entry, forceDefault, cb)}
}

type outcome struct {
	result *Result
	ok     bool
}

// Resolve runs a job and waits for its outcome. A failed job returns ErrParseFailed;
// ctx ending first stops the job and returns ctx.Err().
func (c *Client) Resolve(ctx context.Context, entry PlayEntry, forceDefault bool) (*Result, error) {
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}
	entry, err := NormalizeEntry(entry)
	if err != nil {
		return nil, err
	}

	ch := make(chan outcome, 1)
	job := c.Start(entry, forceDefault, Callback{
		OnSuccess: func(headers map[string]string, url, sourceName string) {
			ch <- outcome{ok: true, result: &Result{Headers: headers, URL: url, SourceName: sourceName}}
		},
		OnFailure: func() {
			ch <- outcome{}
		},
	})
	c.logger.Debugf("resolve: job %s started kind=%s", job.ID(), job.Spec().Kind)

	select {
	case o := <-ch:
		if !o.ok {
			return nil, ErrParseFailed
		}
		return o.result, nil
	case <-ctx.Done():
		job.Stop()
		return nil, ctx.Err()
	case <-c.closed:
		job.Stop()
		return nil, ErrClosed
	}
}

// Close releases the looper and sniffer the client created. Jobs still running
// keep their reports; Resolve calls in flight return ErrClosed.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.engine.Close()
		if c.sniffer != nil {
			c.sniffer.Close()
		}
		if c.loop != nil {
			c.loop.Close()
		}
	})
}
