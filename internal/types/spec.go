package types

import (
	"fmt"
	"strings"
)

// Kind selects how a ResolverSpec is executed.
type Kind int

const (
	// KindSniff renders the target page and watches its traffic for a media URL.
	KindSniff Kind = 0
	// KindJSON calls a JSON resolver endpoint once.
	KindJSON Kind = 1
	// KindJSONAggregate races every JSON spec selected by a flag.
	KindJSONAggregate Kind = 2
	// KindWebAggregate races every sniff spec selected by a flag.
	KindWebAggregate Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindSniff:
		return "sniff"
	case KindJSON:
		return "json"
	case KindJSONAggregate:
		return "json-aggregate"
	case KindWebAggregate:
		return "web-aggregate"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsAggregate reports whether the kind only selects other specs and never executes itself.
func (k Kind) IsAggregate() bool {
	return k == KindJSONAggregate || k == KindWebAggregate
}

// ResolverSpec describes one resolution strategy. It is treated as immutable once built.
type ResolverSpec struct {
	Kind    Kind
	Name    string
	BaseURL string
	Headers map[string]string
}

// Target joins the spec base URL with the page URL of a play entry.
func (s ResolverSpec) Target(pageURL string) string {
	return s.BaseURL + pageURL
}

// Clone returns a copy that shares no maps with s.
func (s ResolverSpec) Clone() ResolverSpec {
	s.Headers = CloneHeaders(s.Headers)
	return s
}

// PlayEntry is the caller input of one resolution job.
//
// RawURL is inspected by strategy selection and may carry a "json:" or "parse:"
// prefix. PageURL, when set, is the page appended to a resolver base URL.
type PlayEntry struct {
	Key     string
	RawURL  string
	PageURL string
	Headers map[string]string
	Flag    string
}

// Result is the outcome of a successful resolution.
type Result struct {
	Headers    map[string]string
	URL        string
	SourceName string
}

// Callback receives the terminal outcome of a resolution.
type Callback struct {
	OnSuccess func(headers map[string]string, url, sourceName string)
	OnFailure func()
}

// CloneHeaders copies a header map; nil stays nil.
func CloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// HeaderValue looks up a header case-insensitively.
func HeaderValue(h map[string]string, key string) (string, bool) {
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
