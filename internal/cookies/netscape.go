// Package cookies loads Netscape cookies.txt files into an http.CookieJar so
// resolver and sniff requests carry a site session.
package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape parses a Netscape cookies.txt format.
// Format: domain flag path secure expiration name value
func ParseNetscape(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}

		cookie := &http.Cookie{
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			Name:     parts[5],
			Value:    parts[6],
			HttpOnly: httpOnly,
		}
		// Zero expiry marks a session cookie.
		if expiresUnix, err := strconv.ParseInt(parts[4], 10, 64); err == nil && expiresUnix > 0 {
			cookie.Expires = time.Unix(expiresUnix, 0)
		}
		cookies = append(cookies, cookie)
	}

	return cookies, scanner.Err()
}

// NewJar builds a jar holding cookies, grouped by their domain.
func NewJar(cookies []*http.Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	byDomain := make(map[string][]*http.Cookie)
	for _, c := range cookies {
		byDomain[c.Domain] = append(byDomain[c.Domain], c)
	}
	for domain, cs := range byDomain {
		scheme := "http"
		for _, c := range cs {
			if c.Secure {
				scheme = "https"
				break
			}
		}
		host := strings.TrimPrefix(domain, ".")
		jar.SetCookies(&url.URL{Scheme: scheme, Host: host}, cs)
	}
	return jar, nil
}

// LoadJar reads a cookies.txt file into a jar.
func LoadJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cookies file: %w", err)
	}
	defer f.Close()

	list, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse cookies file: %w", err)
	}
	return NewJar(list)
}
