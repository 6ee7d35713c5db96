package sniff

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/playparse/internal/types"
)

const mediaPlaylist = "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXTINF:10.0,\nseg0.ts\n#EXT-X-ENDLIST\n"

type outcome struct {
	ok      bool
	url     string
	from    string
	headers map[string]string
}

func startAndWait(t *testing.T, p *PageSniffer, target string, headers map[string]string) outcome {
	t.Helper()
	ch := make(chan outcome, 2)
	p.Start(context.Background(), "k", "site", target, headers, types.Callback{
		OnSuccess: func(h map[string]string, u, from string) { ch <- outcome{ok: true, url: u, from: from, headers: h} },
		OnFailure: func() { ch <- outcome{} },
	})
	select {
	case o := <-ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("sniff session did not report")
		return outcome{}
	}
}

func TestPageSnifferFindsPlaylist(t *testing.T) {
	gotUA := make(chan string, 1)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		select {
		case gotUA <- r.Header.Get("User-Agent"):
		default:
		}
		fmt.Fprintf(w, `<html><script>var player={url:"%s/live/index.m3u8"};</script></html>`, srv.URL)
	})
	mux.HandleFunc("/live/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mediaPlaylist)
	})

	p := NewPageSniffer(PageConfig{HTTPClient: srv.Client()})
	defer p.Close()

	o := startAndWait(t, p, srv.URL+"/page", nil)
	require.True(t, o.ok)
	assert.Equal(t, srv.URL+"/live/index.m3u8", o.url)
	assert.Equal(t, "site", o.from)
	assert.Equal(t, srv.URL+"/page", o.headers["Referer"])
	assert.Equal(t, DefaultUserAgent, <-gotUA)
}

func TestPageSnifferRejectsBrokenPlaylist(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<a href="%s/bad.m3u8">x</a>`, srv.URL)
	})
	mux.HandleFunc("/bad.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not a playlist</html>")
	})

	p := NewPageSniffer(PageConfig{HTTPClient: srv.Client()})
	defer p.Close()

	o := startAndWait(t, p, srv.URL+"/page", nil)
	assert.False(t, o.ok)
}

func TestPageSnifferDirectMediaURL(t *testing.T) {
	p := NewPageSniffer(PageConfig{})
	defer p.Close()

	o := startAndWait(t, p, "https://cdn.example/movie.mp4", map[string]string{"user-agent": "custom"})
	require.True(t, o.ok)
	assert.Equal(t, "https://cdn.example/movie.mp4", o.url)
	assert.Equal(t, "custom", o.headers["user-agent"])
	_, dup := o.headers["User-Agent"]
	assert.False(t, dup)
}

func TestPageSnifferPageStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewPageSniffer(PageConfig{HTTPClient: srv.Client()})
	defer p.Close()

	o := startAndWait(t, p, srv.URL+"/missing", nil)
	assert.False(t, o.ok)
}

func TestPageSnifferStopSuppressesReport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewPageSniffer(PageConfig{HTTPClient: srv.Client()})
	defer p.Close()

	var reports atomic.Int32
	h := p.Start(context.Background(), "", "", srv.URL+"/slow", nil, types.Callback{
		OnSuccess: func(map[string]string, string, string) { reports.Add(1) },
		OnFailure: func() { reports.Add(1) },
	})
	h.Stop(true)
	h.Stop(true)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), reports.Load())
}

func TestPageSnifferSessionTimeoutReportsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewPageSniffer(PageConfig{HTTPClient: srv.Client(), SessionTimeout: 50 * time.Millisecond})
	defer p.Close()

	o := startAndWait(t, p, srv.URL+"/slow", nil)
	assert.False(t, o.ok)
}
