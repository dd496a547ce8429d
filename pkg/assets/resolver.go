package assets

import (
	"path"
	"strings"

	"github.com/vango-dev/ssg/pkg/routepath"
)

// Resolver maps module ids to emitted asset URLs.
type Resolver struct {
	manifest Manifest
	ssr      SSRManifest
	base     string
}

// NewResolver creates a Resolver. Base is prefixed to manifest-relative
// files; SSR manifest entries are used as they are.
func NewResolver(m Manifest, ssr SSRManifest, base string) *Resolver {
	if base == "" {
		base = "/"
	}
	return &Resolver{manifest: m, ssr: ssr, base: base}
}

// Manifest returns the client manifest.
func (r *Resolver) Manifest() Manifest {
	return r.manifest
}

// Collect returns the asset files for entries and their dynamic imports as
// an ordered set. Each module contributes its SSR manifest files, then the
// stylesheets and assets recorded in the client manifest.
func (r *Resolver) Collect(entries ...string) []string {
	set := newOrderedSet()
	for _, id := range r.manifest.Modules(entries...) {
		for _, f := range r.ssr[id] {
			set.add(f)
		}
		item, ok := r.manifest[id]
		if !ok {
			continue
		}
		for _, f := range item.CSS {
			set.add(r.url(f))
		}
		for _, f := range item.Assets {
			set.add(r.url(f))
		}
	}
	return set.items
}

func (r *Resolver) url(file string) string {
	if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
		return file
	}
	return routepath.JoinSegments(r.base, file)
}

// Collect is the functional form of Resolver.Collect.
func Collect(m Manifest, ssr SSRManifest, base string, entries ...string) []string {
	return NewResolver(m, ssr, base).Collect(entries...)
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

// IsFingerprinted reports whether a file name carries a content hash,
// either "name.<hash>.ext" or "name-<hash>.ext" with at least 8 hash chars.
func IsFingerprinted(filePath string) bool {
	base := path.Base(filePath)
	ext := path.Ext(base)
	if ext == "" {
		return false
	}
	stem := strings.TrimSuffix(base, ext)

	var hash string
	if i := strings.LastIndexAny(stem, ".-"); i >= 0 {
		hash = stem[i+1:]
	}
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_') {
			return false
		}
	}
	return true
}
