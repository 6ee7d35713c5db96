package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famomatic/playparse/internal/types"
)

func testStore() *Memory {
	return NewMemory("",
		Entry{Spec: types.ResolverSpec{Kind: types.KindJSON, Name: "j1", BaseURL: "http://j1/?url="}, Flags: []string{"qq"}},
		Entry{Spec: types.ResolverSpec{Kind: types.KindJSON, Name: "j2", BaseURL: "http://j2/?url="}, Flags: []string{"youku"}},
		Entry{Spec: types.ResolverSpec{Kind: types.KindSniff, Name: "w1", BaseURL: "http://w1/?url="}},
		Entry{Spec: types.ResolverSpec{Kind: types.KindJSONAggregate, Name: "mix"}},
	)
}

func TestMemoryDefaultSpecFallsBackToFirst(t *testing.T) {
	m := testStore()
	spec, ok := m.DefaultSpec()
	require.True(t, ok)
	assert.Equal(t, "j1", spec.Name)

	m.SetDefault("w1")
	spec, ok = m.DefaultSpec()
	require.True(t, ok)
	assert.Equal(t, types.KindSniff, spec.Kind)

	m.SetDefault("missing")
	spec, ok = m.DefaultSpec()
	require.True(t, ok)
	assert.Equal(t, "j1", spec.Name)
}

func TestMemoryDefaultSpecEmpty(t *testing.T) {
	_, ok := NewMemory("x").DefaultSpec()
	assert.False(t, ok)
}

func TestMemorySpecByName(t *testing.T) {
	m := testStore()
	spec, ok := m.SpecByName("j2")
	require.True(t, ok)
	assert.Equal(t, "http://j2/?url=", spec.BaseURL)

	_, ok = m.SpecByName("nope")
	assert.False(t, ok)
	_, ok = m.SpecByName("")
	assert.False(t, ok)
}

func TestMemoryListSpecsFiltersByFlag(t *testing.T) {
	m := testStore()
	got := m.ListSpecs(types.KindJSON, "youku")
	require.Len(t, got, 1)
	assert.Equal(t, "j2", got[0].Name)
}

func TestMemoryListSpecsFallsBackToAllOfKind(t *testing.T) {
	m := testStore()
	got := m.ListSpecs(types.KindJSON, "unknown-flag")
	require.Len(t, got, 2)
	assert.Equal(t, "j1", got[0].Name)
	assert.Equal(t, "j2", got[1].Name)

	assert.Len(t, m.ListSpecs(types.KindSniff, ""), 1)
	assert.Empty(t, m.ListSpecs(types.KindWebAggregate, "qq"))
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory("", Entry{Spec: types.ResolverSpec{Name: "a", Headers: map[string]string{"User-Agent": "x"}}})
	spec, _ := m.SpecByName("a")
	spec.Headers["User-Agent"] = "mutated"
	again, _ := m.SpecByName("a")
	assert.Equal(t, "x", again.Headers["User-Agent"])
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
default: api
parses:
  - name: sniffer
    type: 0
    url: "https://sniff.example/?url="
  - name: api
    type: 1
    url: "https://api.example/?url="
    ext:
      flag: [qq, iqiyi]
      header:
        User-Agent: okhttp/4.9
`)
	m, err := Parse(data)
	require.NoError(t, err)

	spec, ok := m.DefaultSpec()
	require.True(t, ok)
	assert.Equal(t, types.KindJSON, spec.Kind)
	assert.Equal(t, "okhttp/4.9", spec.Headers["User-Agent"])
	assert.Len(t, m.ListSpecs(types.KindJSON, "iqiyi"), 1)
}

func TestParseJSON(t *testing.T) {
	m, err := Parse([]byte(`{"parses":[{"name":"w","type":3,"url":""}]}`))
	require.NoError(t, err)
	spec, ok := m.SpecByName("w")
	require.True(t, ok)
	assert.Equal(t, types.KindWebAggregate, spec.Kind)
}

func TestParseRejectsBadConfig(t *testing.T) {
	_, err := Parse([]byte(`{"parses":[{"name":"x","type":7}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"parses":[{"name":"x","type":1},{"name":"x","type":0}]}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parses:\n  - name: a\n    type: 1\n    url: http://a/\n"), 0o600))
	m, err := Load(path)
	require.NoError(t, err)
	_, ok := m.SpecByName("a")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
