package assets

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// ManifestItem is one module entry of the bundler manifest.
type ManifestItem struct {
	File           string   `json:"file"`
	Src            string   `json:"src,omitempty"`
	Name           string   `json:"name,omitempty"`
	IsEntry        bool     `json:"isEntry,omitempty"`
	IsDynamicEntry bool     `json:"isDynamicEntry,omitempty"`
	CSS            []string `json:"css,omitempty"`
	Assets         []string `json:"assets,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	DynamicImports []string `json:"dynamicImports,omitempty"`
}

// Manifest maps module ids to their emitted output. It is read-only once
// loaded and safe for concurrent use.
type Manifest map[string]ManifestItem

// SSRManifest maps module ids to the emitted files they contribute.
type SSRManifest map[string][]string

// LoadManifest reads a bundler manifest.json.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadSSRManifest reads a bundler ssr-manifest.json.
func LoadSSRManifest(path string) (SSRManifest, error) {
	var m SSRManifest
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Modules returns entries plus every module reachable from them through
// dynamicImports, in discovery order. Cycles are visited once.
func (m Manifest) Modules(entries ...string) []string {
	visited := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if id == "" || visited[id] {
			return
		}
		visited[id] = true
		order = append(order, id)
		for _, dep := range m[id].DynamicImports {
			visit(dep)
		}
	}

	for _, e := range entries {
		visit(e)
	}
	return order
}

// FindByFile returns the id of the module whose emitted file ends with
// name. Ids are checked in sorted order so the result is deterministic.
func (m Manifest) FindByFile(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if strings.HasSuffix(m[id].File, name) {
			return id, true
		}
	}
	return "", false
}

// Entry returns the first module flagged isEntry whose source matches src,
// or any entry when src is empty.
func (m Manifest) Entry(src string) (string, bool) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		item := m[id]
		if !item.IsEntry {
			continue
		}
		if src == "" || id == src || item.Src == src {
			return id, true
		}
	}
	return "", false
}
