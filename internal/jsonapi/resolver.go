// Package jsonapi calls JSON resolver endpoints that translate a page URL into a media URL.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/famomatic/playparse/internal/types"
)

const (
	envelopeKey = "data"
	urlKey      = "url"

	maxBodyBytes = 4 << 20
)

// headerWhitelist lists the response keys copied into the result headers, lower-cased.
var headerWhitelist = []string{"user-agent", "referer"}

// Resolver performs JSON resolver round trips.
type Resolver struct {
	client *http.Client
}

// NewResolver returns a Resolver using client, or http.DefaultClient when nil.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{client: client}
}

// Resolve calls spec against pageURL and returns the extracted url and headers.
// An empty url is a failure. SourceName is left empty.
func (r *Resolver) Resolve(ctx context.Context, spec types.ResolverSpec, pageURL string) (*types.Result, error) {
	res, err := r.call(ctx, spec, pageURL)
	if err != nil {
		return nil, err
	}
	if res.URL == "" {
		return nil, fmt.Errorf("%w: resolver %q returned no url", types.ErrMalformedResponse, spec.Name)
	}
	return res, nil
}

// ResolveStrict is Resolve followed by a GET of the extracted url, which must answer 200.
// On success SourceName carries spec.Name.
func (r *Resolver) ResolveStrict(ctx context.Context, spec types.ResolverSpec, pageURL string) (*types.Result, error) {
	res, err := r.Resolve(ctx, spec, pageURL)
	if err != nil {
		return nil, err
	}
	if err := r.verify(ctx, spec.Name, res); err != nil {
		return nil, err
	}
	res.SourceName = spec.Name
	return res, nil
}

func (r *Resolver) call(ctx context.Context, spec types.ResolverSpec, pageURL string) (*types.Result, error) {
	target := spec.Target(pageURL)
	body, err := r.get(ctx, spec.Name, target, spec.Headers)
	if err != nil {
		return nil, err
	}

	object, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("resolver %q: %w", spec.Name, err)
	}
	return &types.Result{
		Headers: ExtractHeaders(object),
		URL:     stringField(object, urlKey),
	}, nil
}

func (r *Resolver) verify(ctx context.Context, name string, res *types.Result) error {
	req, err := newRequest(ctx, res.URL, res.Headers)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: verify %s: %v", types.ErrNetwork, res.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{Resolver: name, URL: res.URL, StatusCode: resp.StatusCode}
	}
	return nil
}

func (r *Resolver) get(ctx context.Context, name, target string, headers map[string]string) ([]byte, error) {
	req, err := newRequest(ctx, target, headers)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrNetwork, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Resolver: name, URL: target, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", types.ErrNetwork, target, err)
	}
	return body, nil
}

func newRequest(ctx context.Context, target string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %q: %v", types.ErrNetwork, target, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// decodeObject parses body as a JSON object and unwraps a "data" envelope when present.
func decodeObject(body []byte) (map[string]any, error) {
	var object map[string]any
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}
	if object == nil {
		return nil, fmt.Errorf("%w: body is not an object", types.ErrMalformedResponse)
	}
	raw, ok := object[envelopeKey]
	if !ok {
		return object, nil
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", types.ErrMalformedResponse, envelopeKey)
	}
	return data, nil
}

// ExtractHeaders copies the whitelisted keys of object, matched case-insensitively,
// keeping the key spelling used by the resolver.
func ExtractHeaders(object map[string]any) map[string]string {
	headers := make(map[string]string)
	for key, raw := range object {
		if !whitelisted(key) {
			continue
		}
		if v, ok := scalarString(raw); ok {
			headers[key] = v
		}
	}
	return headers
}

func whitelisted(key string) bool {
	for _, w := range headerWhitelist {
		if strings.EqualFold(key, w) {
			return true
		}
	}
	return false
}

func stringField(object map[string]any, key string) string {
	v, _ := object[key].(string)
	return v
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
