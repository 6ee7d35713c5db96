// Package store holds the configured resolver specs a job selects from.
package store

import (
	"slices"
	"strings"
	"sync"

	"github.com/famomatic/playparse/internal/types"
)

// Store is the configuration collaborator consulted by strategy selection
// and by the aggregate branches.
type Store interface {
	// DefaultSpec returns the configured default resolver. ok is false when the store is empty.
	DefaultSpec() (spec types.ResolverSpec, ok bool)
	// SpecByName looks up a resolver by its configured name.
	SpecByName(name string) (spec types.ResolverSpec, ok bool)
	// ListSpecs returns the resolvers of kind selected by flag, in configuration order.
	ListSpecs(kind types.Kind, flag string) []types.ResolverSpec
}

// Entry is one configured resolver together with the flags it serves.
type Entry struct {
	Spec  types.ResolverSpec
	Flags []string
}

// Memory is a Store backed by an ordered slice. It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	entries     []Entry
	defaultName string
}

// NewMemory builds a store from entries. defaultName may be empty, in which case
// the first entry is the default.
func NewMemory(defaultName string, entries ...Entry) *Memory {
	m := &Memory{defaultName: defaultName}
	for _, e := range entries {
		m.entries = append(m.entries, cloneEntry(e))
	}
	return m
}

// Add appends a resolver to the store.
func (m *Memory) Add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, cloneEntry(e))
}

// SetDefault changes the default resolver name.
func (m *Memory) SetDefault(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
}

func (m *Memory) DefaultSpec() (types.ResolverSpec, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.entries) == 0 {
		return types.ResolverSpec{}, false
	}
	if m.defaultName != "" {
		if e, ok := m.find(m.defaultName); ok {
			return e.Spec.Clone(), true
		}
	}
	return m.entries[0].Spec.Clone(), true
}

func (m *Memory) SpecByName(name string) (types.ResolverSpec, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.find(name)
	if !ok {
		return types.ResolverSpec{}, false
	}
	return e.Spec.Clone(), true
}

// ListSpecs returns the specs of kind whose flags contain flag. When no spec of
// kind names the flag, every spec of kind is returned instead.
func (m *Memory) ListSpecs(kind types.Kind, flag string) []types.ResolverSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched, all []types.ResolverSpec
	for _, e := range m.entries {
		if e.Spec.Kind != kind {
			continue
		}
		all = append(all, e.Spec.Clone())
		if flag != "" && slices.Contains(e.Flags, flag) {
			matched = append(matched, e.Spec.Clone())
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return all
}

func (m *Memory) find(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false
	}
	for _, e := range m.entries {
		if e.Spec.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func cloneEntry(e Entry) Entry {
	return Entry{
		Spec:  e.Spec.Clone(),
		Flags: slices.Clone(e.Flags),
	}
}
