package client

import (
	"github.com/famomatic/playparse/internal/store"
	"github.com/famomatic/playparse/internal/types"
)

// PlayEntry is the input of one resolution: the raw play URL, optionally the page
// it refers to, request headers and the site flag used by aggregate resolvers.
type PlayEntry = types.PlayEntry

// Result is a resolved, directly playable URL and the headers needed to fetch it.
type Result = types.Result

// Callback receives the single terminal outcome of a job.
type Callback = types.Callback

// ResolverSpec describes one configured resolver.
type ResolverSpec = types.ResolverSpec

// Kind selects how a ResolverSpec is executed.
type Kind = types.Kind

const (
	KindSniff         = types.KindSniff
	KindJSON          = types.KindJSON
	KindJSONAggregate = types.KindJSONAggregate
	KindWebAggregate  = types.KindWebAggregate
)

// Store supplies configured resolver specs.
type Store = store.Store

// StoreEntry is one resolver in an in-memory store, with the flags it serves.
type StoreEntry = store.Entry

// NewStore builds an in-memory store. defaultName may be empty.
func NewStore(defaultName string, entries ...StoreEntry) *store.Memory {
	return store.NewMemory(defaultName, entries...)
}

// LoadStore reads a YAML or JSON resolver configuration file.
func LoadStore(path string) (*store.Memory, error) {
	return store.Load(path)
}
