package assets

import (
	"context"
	"regexp"
	"strings"

	"github.com/vango-dev/ssg/pkg/routes"
)

// Collector computes the asset files a matched page depends on.
type Collector interface {
	Collect(ctx context.Context, matches []routes.Match) []string
}

// EntryCollector collects from each matched route's declared Entry and
// Chunks plus a fixed set of root entries.
type EntryCollector struct {
	Resolver *Resolver
	Roots    []string
}

// Collect implements Collector.
func (c *EntryCollector) Collect(_ context.Context, matches []routes.Match) []string {
	entries := append([]string(nil), c.Roots...)
	for _, m := range matches {
		entries = append(entries, m.Route.Entry)
		entries = append(entries, m.Route.Chunks...)
	}
	return c.Resolver.Collect(entries...)
}

// dynamicImportPattern matches literal dynamic import targets.
var dynamicImportPattern = regexp.MustCompile(`import\("([^)]+)"\)`)

// DiscoveryCollector extends EntryCollector for routes that only reveal
// their chunk through a lazy resolver. Declared Chunks win; otherwise the
// route's LazySource is scanned for import("...") targets whose last path
// segment is matched by suffix against the server manifest's emitted files.
type DiscoveryCollector struct {
	EntryCollector
	Server Manifest
}

// Collect implements Collector.
func (c *DiscoveryCollector) Collect(ctx context.Context, matches []routes.Match) []string {
	entries := append([]string(nil), c.Roots...)
	for _, m := range matches {
		entries = append(entries, m.Route.Entry)
		if len(m.Route.Chunks) > 0 {
			entries = append(entries, m.Route.Chunks...)
			continue
		}
		for _, name := range DynamicImports(m.Route.LazySource) {
			if id, ok := c.Server.FindByFile(name); ok {
				entries = append(entries, id)
			}
		}
	}
	return c.Resolver.Collect(entries...)
}

// DynamicImports returns the last path segment of every literal
// import("...") target in src.
func DynamicImports(src string) []string {
	var names []string
	for _, m := range dynamicImportPattern.FindAllStringSubmatch(src, -1) {
		target := m[1]
		if i := strings.LastIndex(target, "/"); i >= 0 {
			target = target[i+1:]
		}
		if target != "" {
			names = append(names, target)
		}
	}
	return names
}
