package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/famomatic/playparse/internal/store"
	"github.com/famomatic/playparse/internal/types"
)

const (
	// JSONPrefix marks a play URL that embeds a JSON resolver base URL.
	JSONPrefix = "json:"
	// ParsePrefix marks a play URL that names a configured resolver.
	ParsePrefix = "parse:"
)

// Selector decides which resolver spec drives a play entry.
type Selector interface {
	Select(entry types.PlayEntry, forceDefault bool) types.ResolverSpec
}

// Logger receives selection diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type defaultSelector struct {
	store  store.Store
	logger Logger
}

// NewSelector returns a Selector backed by the given store. A nil store behaves
// as empty; a nil logger discards selection misses.
func NewSelector(s store.Store, logger Logger) Selector {
	if logger == nil {
		logger = nopLogger{}
	}
	return &defaultSelector{store: s, logger: logger}
}

// Select never fails: when no rule yields a spec the entry itself is sniffed.
func (s *defaultSelector) Select(entry types.PlayEntry, forceDefault bool) types.ResolverSpec {
	spec, err := s.match(entry, forceDefault)
	if err == nil {
		return spec
	}
	if !errors.Is(err, errNoRule) {
		s.logger.Debugf("select: key=%q: %v; sniffing entry", entry.Key, err)
	}
	base := entry.RawURL
	if entry.PageURL != "" && hasSelectorPrefix(base) {
		// A missed lookup leaves no base to prepend; the page is sniffed as is.
		base = ""
	}
	return types.ResolverSpec{
		Kind:    types.KindSniff,
		BaseURL: base,
		Headers: types.CloneHeaders(entry.Headers),
	}
}

// errNoRule marks an entry that no selection rule applies to.
var errNoRule = errors.New("no selection rule")

func (s *defaultSelector) match(entry types.PlayEntry, forceDefault bool) (types.ResolverSpec, error) {
	switch {
	case forceDefault:
		if s.store != nil {
			if spec, ok := s.store.DefaultSpec(); ok {
				return spec, nil
			}
		}
		return types.ResolverSpec{}, fmt.Errorf("%w: no default resolver", types.ErrSelectionMiss)
	case strings.HasPrefix(entry.RawURL, JSONPrefix):
		return types.ResolverSpec{
			Kind:    types.KindJSON,
			BaseURL: entry.RawURL[len(JSONPrefix):],
			Headers: types.CloneHeaders(entry.Headers),
		}, nil
	case strings.HasPrefix(entry.RawURL, ParsePrefix):
		name := entry.RawURL[len(ParsePrefix):]
		if s.store != nil {
			if spec, ok := s.store.SpecByName(name); ok {
				return spec, nil
			}
		}
		return types.ResolverSpec{}, fmt.Errorf("%w: %q", types.ErrSelectionMiss, name)
	}
	return types.ResolverSpec{}, errNoRule
}

func hasSelectorPrefix(raw string) bool {
	return strings.HasPrefix(raw, ParsePrefix) || strings.HasPrefix(raw, JSONPrefix)
}
