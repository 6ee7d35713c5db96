package store

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/famomatic/playparse/internal/types"
)

// File is the on-disk resolver configuration. YAML and JSON are both accepted.
type File struct {
	Default string      `json:"default,omitempty"`
	Parses  []FileParse `json:"parses"`
}

// FileParse is one resolver as written in the configuration file.
type FileParse struct {
	Name string  `json:"name"`
	Type int     `json:"type"`
	URL  string  `json:"url"`
	Ext  FileExt `json:"ext,omitempty"`
}

// FileExt carries the optional per-resolver extras.
type FileExt struct {
	Flag   []string          `json:"flag,omitempty"`
	Header map[string]string `json:"header,omitempty"`
}

// Load reads a configuration file into a Memory store.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolver config: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration bytes into a Memory store.
func Parse(data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode resolver config: %w", err)
	}
	m := NewMemory(f.Default)
	seen := make(map[string]struct{}, len(f.Parses))
	for i, p := range f.Parses {
		if p.Type < int(types.KindSniff) || p.Type > int(types.KindWebAggregate) {
			return nil, fmt.Errorf("resolver config: parses[%d] %q: unknown type %d", i, p.Name, p.Type)
		}
		if p.Name != "" {
			if _, dup := seen[p.Name]; dup {
				return nil, fmt.Errorf("resolver config: duplicate resolver name %q", p.Name)
			}
			seen[p.Name] = struct{}{}
		}
		m.Add(Entry{
			Spec: types.ResolverSpec{
				Kind:    types.Kind(p.Type),
				Name:    p.Name,
				BaseURL: p.URL,
				Headers: p.Ext.Header,
			},
			Flags: p.Ext.Flag,
		})
	}
	return m, nil
}
