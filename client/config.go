package client

import (
	"net/http"
	"time"

	"github.com/famomatic/playparse/internal/orchestrator"
	"github.com/famomatic/playparse/internal/sniff"
)

// DefaultTimeout is the global deadline applied to every job when Config.Timeout is zero.
const DefaultTimeout = orchestrator.DefaultTimeout

// Sniffer starts browser-style sniff sessions.
type Sniffer = sniff.Sniffer

// SniffHandle controls one running sniff session.
type SniffHandle = sniff.Handle

// Poster marshals terminal reports onto the context that owns them, such as a UI loop.
type Poster = orchestrator.Poster

// Config holds configuration for the resolution client.
type Config struct {
	// HTTPClient is the client used for resolver calls and the default sniffer.
	// If nil, a client honouring ProxyURL and CookieJar is built.
	HTTPClient *http.Client

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// CookieJar is attached to the built HTTP client, or to HTTPClient when it has none.
	CookieJar http.CookieJar

	// Store supplies named, default and aggregate resolver specs.
	// If nil, only inline "json:" entries and plain sniffing are available.
	Store Store

	// Sniffer discovers media URLs from pages. If nil, an HTTP page sniffer is used.
	Sniffer Sniffer

	// Poster delivers reports. If nil, reports run on a client-owned serial looper.
	Poster Poster

	// Timeout is the global deadline of one job. Default is DefaultTimeout.
	Timeout time.Duration

	// SniffTimeout bounds each session of the default sniffer.
	SniffTimeout time.Duration

	// UserAgent overrides the default sniffer User-Agent.
	UserAgent string

	// Logger receives diagnostics. If nil, logs are discarded.
	Logger Logger
}

func (c Config) toEngineConfig(httpClient *http.Client, sniffer Sniffer, poster Poster, logger Logger) orchestrator.Config {
	return orchestrator.Config{
		Store:      c.Store,
		HTTPClient: httpClient,
		Sniffer:    sniffer,
		Poster:     poster,
		Timeout:    c.Timeout,
		Logger:     logger,
	}
}
