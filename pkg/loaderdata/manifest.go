// Package loaderdata aggregates route loader results per rendered page into
// the static loader data manifest the client fetches at hydration time.
//
// The manifest maps a page path to a map from route id to that route's
// loader result, with null for routes that have no loader:
//
//	{"/docs/a": {"0": null, "0-1": {"title": "A"}}}
package loaderdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vango-dev/ssg/pkg/routepath"
)

// FilePrefix and FileSuffix surround the build hash in the manifest name.
const (
	FilePrefix = "static-loader-data-manifest-"
	FileSuffix = ".json"
)

// FileName returns the manifest file name for a build hash.
func FileName(hash string) string {
	return FilePrefix + hash + FileSuffix
}

// Manifest is safe for concurrent use by render workers.
type Manifest struct {
	mu    sync.Mutex
	pages map[string]map[string]any
}

// New creates an empty Manifest.
func New() *Manifest {
	return &Manifest{pages: make(map[string]map[string]any)}
}

// Record stores one route's loader result for path. A nil data records
// the route as having no loader output.
func (m *Manifest) Record(path, routeID string, data any) {
	path = routepath.WithLeadingSlash(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[path]
	if !ok {
		page = make(map[string]any)
		m.pages[path] = page
	}
	page[routeID] = data
}

// RecordAll stores every route result for path. An empty map still
// registers the path.
func (m *Manifest) RecordAll(path string, data map[string]any) {
	path = routepath.WithLeadingSlash(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[path]
	if !ok {
		page = make(map[string]any, len(data))
		m.pages[path] = page
	}
	for id, v := range data {
		page[id] = v
	}
}

// Get returns the recorded data for path.
func (m *Manifest) Get(path string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[routepath.WithLeadingSlash(path)]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(page))
	for k, v := range page {
		out[k] = v
	}
	return out, true
}

// Paths returns the recorded paths in sorted order.
func (m *Manifest) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pages))
	for p := range m.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of recorded paths.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// MarshalJSON implements json.Marshaler. Keys are emitted sorted.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(m.pages)
}

// Serialize returns the manifest as JSON.
func (m *Manifest) Serialize() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("loaderdata: serialize: %w", err)
	}
	return data, nil
}

// Parse decodes a serialized manifest.
func Parse(data []byte) (*Manifest, error) {
	pages := make(map[string]map[string]any)
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("loaderdata: parse: %w", err)
	}
	m := New()
	for p, page := range pages {
		if page == nil {
			page = make(map[string]any)
		}
		m.pages[routepath.WithLeadingSlash(p)] = page
	}
	return m, nil
}

// WriteFile writes the manifest into dir under FileName(hash) and returns
// the written path.
func (m *Manifest) WriteFile(dir, hash string) (string, error) {
	data, err := m.Serialize()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(hash))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("loaderdata: write %s: %w", path, err)
	}
	return path, nil
}
