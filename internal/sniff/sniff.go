// Package sniff defines the boundary to the network sniffer that discovers a
// media URL by loading a page, and ships a default HTTP-only implementation.
package sniff

import (
	"context"

	"github.com/famomatic/playparse/internal/types"
)

// Handle controls one running sniff session.
type Handle interface {
	// Stop cancels the session. With force, a report already queued for delivery is dropped too.
	Stop(force bool)
}

// Sniffer starts sniff sessions. Start must not block; the session reports
// through cb from the sniffer's own execution context, at most once.
type Sniffer interface {
	Start(ctx context.Context, key, name, url string, headers map[string]string, cb types.Callback) Handle
}

// SnifferFunc adapts a function to the Sniffer interface.
type SnifferFunc func(ctx context.Context, key, name, url string, headers map[string]string, cb types.Callback) Handle

func (f SnifferFunc) Start(ctx context.Context, key, name, url string, headers map[string]string, cb types.Callback) Handle {
	return f(ctx, key, name, url, headers, cb)
}

// HandleFunc adapts a function to the Handle interface.
type HandleFunc func(force bool)

func (f HandleFunc) Stop(force bool) { f(force) }
