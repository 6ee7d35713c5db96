package client

import (
	"net/url"
	"strings"

	"github.com/famomatic/playparse/internal/policy"
)

// NormalizeEntry trims the URLs of entry and rejects entries that carry nothing
// to resolve or an inline JSON resolver that is not an http(s) URL.
func NormalizeEntry(entry PlayEntry) (PlayEntry, error) {
	entry.RawURL = strings.TrimSpace(entry.RawURL)
	entry.PageURL = strings.TrimSpace(entry.PageURL)
	entry.Flag = strings.TrimSpace(entry.Flag)
	if entry.RawURL == "" && entry.PageURL == "" {
		return entry, ErrInvalidInput
	}
	if rest, ok := strings.CutPrefix(entry.RawURL, policy.JSONPrefix); ok {
		u, err := url.Parse(rest)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return entry, ErrInvalidInput
		}
	}
	return entry, nil
}
