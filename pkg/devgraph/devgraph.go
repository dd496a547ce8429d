// Package devgraph is the boundary to the bundler's development server: its
// module graph, its index.html transform and its stack trace rewriting.
//
// Static is an in-memory graph for tests and bundler-less setups. Client
// talks to a bundler bridge over HTTP.
package devgraph

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/vango-dev/ssg/pkg/routepath"
)

// Module is one node of the dev module graph.
type Module struct {
	// URL is the module's dev server URL, e.g. /src/pages/a.tsx.
	URL string `json:"url"`
	// Imports are the URLs of statically imported modules.
	Imports []string `json:"imports,omitempty"`
}

// Graph looks up modules by URL. A missing module returns ok false.
type Graph interface {
	Module(ctx context.Context, url string) (mod *Module, ok bool, err error)
}

// IndexTransformer applies the bundler's HTML transforms to a template.
type IndexTransformer interface {
	TransformIndexHTML(ctx context.Context, url, doc string) (string, error)
}

// StackFixer rewrites an error's trace to point at original sources.
type StackFixer interface {
	FixStack(stack string) string
}

// vueStylePattern matches style blocks extracted from single-file components.
var vueStylePattern = regexp.MustCompile(`\?vue.*&lang\.css`)

// IsStylesheet reports whether a module URL is CSS.
func IsStylesheet(url string) bool {
	return strings.HasSuffix(routepath.CleanURL(url), ".css") || vueStylePattern.MatchString(url)
}

// isScript reports whether a module is walked for further imports.
func isScript(url string) bool {
	switch path.Ext(routepath.CleanURL(url)) {
	case ".ts", ".tsx", ".js", ".jsx":
		return true
	}
	return false
}

// CollectCSS walks the graph from entries through script modules and
// returns the stylesheet URLs reached, in discovery order. Unknown modules
// are skipped.
func CollectCSS(ctx context.Context, g Graph, entries ...string) ([]string, error) {
	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var styles []string

	var walk func(url string) error
	walk = func(url string) error {
		if visited[url] {
			return nil
		}
		visited[url] = true
		mod, ok, err := g.Module(ctx, url)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for _, dep := range mod.Imports {
			switch {
			case IsStylesheet(dep):
				if !seen[dep] {
					seen[dep] = true
					styles = append(styles, dep)
				}
			case isScript(dep):
				if err := walk(dep); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, e := range entries {
		if e == "" {
			continue
		}
		if err := walk(ModuleURL(e)); err != nil {
			return styles, err
		}
	}
	return styles, nil
}

// ModuleURL turns a project-relative module id into a dev server URL.
func ModuleURL(id string) string {
	if strings.HasPrefix(id, "/") {
		return id
	}
	return "/" + id
}

// Static is an in-memory Graph keyed by URL. It also implements
// IndexTransformer and StackFixer as no-ops.
type Static map[string][]string

// Module implements Graph.
func (s Static) Module(_ context.Context, url string) (*Module, bool, error) {
	imports, ok := s[url]
	if !ok {
		return nil, false, nil
	}
	return &Module{URL: url, Imports: imports}, true, nil
}

// TransformIndexHTML implements IndexTransformer.
func (Static) TransformIndexHTML(_ context.Context, _, doc string) (string, error) {
	return doc, nil
}

// FixStack implements StackFixer.
func (Static) FixStack(stack string) string { return stack }
