package client

import (
	"net/http"
	"net/url"
	"strings"
)

func defaultHTTPClient(proxyURL string, jar http.CookieJar) *http.Client {
	if strings.TrimSpace(proxyURL) == "" {
		return &http.Client{Jar: jar}
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &http.Client{Jar: jar}
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{Jar: jar}
	}
	transport := baseTransport.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport, Jar: jar}
}
