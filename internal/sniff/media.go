package sniff

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/grafov/m3u8"
)

var mediaURLRegexp = regexp.MustCompile(`https?://[^\s"'<>\\()]+?\.(?:m3u8|mp4|flv|m4a|mkv|mp3)(?:\?[^\s"'<>\\()]*)?`)

var mediaExts = []string{".m3u8", ".mp4", ".flv", ".m4a", ".mkv", ".mp3"}

// IsMediaURL reports whether raw points at a media file by its path extension.
func IsMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range mediaExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// FindMediaURLs returns the distinct media URLs in text, in order of appearance.
// JSON-escaped slashes and HTML ampersand entities are normalised first.
func FindMediaURLs(text string) []string {
	text = strings.NewReplacer(`\/`, `/`, `&amp;`, `&`).Replace(text)
	matches := mediaURLRegexp.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func isPlaylistURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}

// checkPlaylist fetches target and requires it to decode as an HLS playlist.
func checkPlaylist(ctx context.Context, client *http.Client, target string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("playlist status %d", resp.StatusCode)
	}
	playlist, listType, err := m3u8.DecodeFrom(io.LimitReader(resp.Body, maxPageBytes), false)
	if err != nil {
		return fmt.Errorf("decode playlist: %w", err)
	}
	switch listType {
	case m3u8.MASTER:
		if master, ok := playlist.(*m3u8.MasterPlaylist); ok && len(master.Variants) == 0 {
			return fmt.Errorf("master playlist has no variants")
		}
	case m3u8.MEDIA:
		if media, ok := playlist.(*m3u8.MediaPlaylist); ok && media.Count() == 0 {
			return fmt.Errorf("media playlist has no segments")
		}
	}
	return nil
}
