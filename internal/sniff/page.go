package sniff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/famomatic/playparse/internal/looper"
	"github.com/famomatic/playparse/internal/types"
)

const (
	// DefaultSessionTimeout bounds one sniff session.
	DefaultSessionTimeout = 15 * time.Second
	// DefaultUserAgent is sent when neither the spec nor the entry sets one.
	DefaultUserAgent = "Mozilla/5.0 (Linux; Android 12) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

	maxPageBytes  = 8 << 20
	unpackTimeout = 2 * time.Second
)

// errNoMedia is returned when a page yields no usable media URL.
var errNoMedia = errors.New("no media url found")

// Logger receives sniff session diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

// PageConfig configures a PageSniffer.
type PageConfig struct {
	// HTTPClient fetches pages and playlists. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// SessionTimeout bounds each session. Zero means DefaultSessionTimeout.
	SessionTimeout time.Duration
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	Logger    Logger
}

// PageSniffer fetches the target page over HTTP and searches it, and any packed
// scripts it carries, for a media URL. Reports are delivered on the sniffer's
// own looper, one at a time.
type PageSniffer struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    Logger
	loop      *looper.Looper
	sessions  sync.WaitGroup
}

// NewPageSniffer starts a PageSniffer. Close releases its looper.
func NewPageSniffer(cfg PageConfig) *PageSniffer {
	p := &PageSniffer{
		client:    cfg.HTTPClient,
		timeout:   cfg.SessionTimeout,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.timeout <= 0 {
		p.timeout = DefaultSessionTimeout
	}
	if p.userAgent == "" {
		p.userAgent = DefaultUserAgent
	}
	if p.logger == nil {
		p.logger = nopLogger{}
	}
	p.loop = looper.New(func(v any) {
		p.logger.Warnf("sniff: callback panic: %v", v)
	})
	return p
}

// Close waits for running sessions to wind down and stops the report looper.
func (p *PageSniffer) Close() {
	p.sessions.Wait()
	p.loop.Close()
	p.loop.Wait()
}

type session struct {
	cancel  context.CancelFunc
	dropped atomic.Bool
	once    sync.Once
}

func (s *session) Stop(force bool) {
	if force {
		s.dropped.Store(true)
	}
	s.cancel()
}

// Start launches a session for target and returns immediately.
func (p *PageSniffer) Start(ctx context.Context, key, name, target string, headers map[string]string, cb types.Callback) Handle {
	sctx, cancel := context.WithTimeout(ctx, p.timeout)
	s := &session{cancel: cancel}

	p.sessions.Add(1)
	go func() {
		defer p.sessions.Done()
		defer cancel()

		reqHeaders := p.requestHeaders(headers)
		mediaURL, err := p.sniff(sctx, target, reqHeaders)
		if err != nil {
			if sctx.Err() == nil || errors.Is(sctx.Err(), context.DeadlineExceeded) {
				jobID, _ := types.JobIDFromContext(ctx)
				p.logger.Debugf("sniff: job=%s key=%s name=%s url=%s: %v", jobID, key, name, target, err)
			}
			p.report(s, sctx, func() {
				if cb.OnFailure != nil {
					cb.OnFailure()
				}
			})
			return
		}

		out := types.CloneHeaders(reqHeaders)
		if _, ok := types.HeaderValue(out, "Referer"); !ok {
			out["Referer"] = target
		}
		p.report(s, sctx, func() {
			if cb.OnSuccess != nil {
				cb.OnSuccess(out, mediaURL, name)
			}
		})
	}()
	return s
}

// report posts fn unless the session was stopped. A session deadline still reports.
func (p *PageSniffer) report(s *session, sctx context.Context, fn func()) {
	if errors.Is(sctx.Err(), context.Canceled) {
		return
	}
	p.loop.Post(func() {
		if s.dropped.Load() {
			return
		}
		s.once.Do(fn)
	})
}

func (p *PageSniffer) requestHeaders(headers map[string]string) map[string]string {
	out := types.CloneHeaders(headers)
	if out == nil {
		out = make(map[string]string)
	}
	if _, ok := types.HeaderValue(out, "User-Agent"); !ok {
		out["User-Agent"] = p.userAgent
	}
	return out
}

func (p *PageSniffer) sniff(ctx context.Context, target string, headers map[string]string) (string, error) {
	if IsMediaURL(target) {
		return target, nil
	}
	body, err := p.fetch(ctx, target, headers)
	if err != nil {
		return "", err
	}

	if u, ok := p.pick(ctx, FindMediaURLs(body), headers); ok {
		return u, nil
	}
	for _, script := range Scripts(body) {
		if !IsPacked(script) {
			continue
		}
		payloads, err := Unpack(script, unpackTimeout)
		if err != nil {
			p.logger.Debugf("sniff: unpack %s: %v", target, err)
			continue
		}
		for _, payload := range payloads {
			if u, ok := p.pick(ctx, FindMediaURLs(payload), headers); ok {
				return u, nil
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", errNoMedia
}

// pick returns the first candidate that is usable. Playlists must decode.
func (p *PageSniffer) pick(ctx context.Context, candidates []string, headers map[string]string) (string, bool) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if !isPlaylistURL(c) {
			return c, true
		}
		if err := checkPlaylist(ctx, p.client, c, headers); err != nil {
			p.logger.Debugf("sniff: reject playlist %s: %v", c, err)
			continue
		}
		return c, true
	}
	return "", false
}

func (p *PageSniffer) fetch(ctx context.Context, target string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
