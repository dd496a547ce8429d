package assets

import (
	"sort"
	"strings"
)

// Link is a <link> tag to inject into the document head.
type Link struct {
	Rel  string
	As   string
	Type string
	Href string
}

// HTML renders the link tag. Every generated link is crossorigin.
func (l Link) HTML() string {
	attrs := map[string]string{"rel": l.Rel, "href": l.Href}
	if l.As != "" {
		attrs["as"] = l.As
	}
	if l.Type != "" {
		attrs["type"] = l.Type
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<link")
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(attrs[k], `"`, "&quot;"))
		b.WriteString(`"`)
	}
	b.WriteString(" crossorigin>")
	return b.String()
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".ico", ".svg"}

// PreloadLink returns the link for a file, or false for files that get no
// hint (scripts and unknown types).
func PreloadLink(file string) (Link, bool) {
	switch {
	case strings.HasSuffix(file, ".js"):
		return Link{}, false
	case strings.HasSuffix(file, ".css"):
		return Link{Rel: "stylesheet", Href: file}, true
	case strings.HasSuffix(file, ".woff"), strings.HasSuffix(file, ".woff2"), strings.HasSuffix(file, ".ttf"):
		return Link{Rel: "preload", As: "font", Type: "font/woff2", Href: file}, true
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(file, ext) {
			return Link{Rel: "preload", As: "image", Href: file}, true
		}
	}
	return Link{}, false
}

// PreloadLinks maps files to links, skipping duplicates and files without
// a hint.
func PreloadLinks(files []string) []Link {
	seen := make(map[string]bool, len(files))
	var links []Link
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		if l, ok := PreloadLink(f); ok {
			links = append(links, l)
		}
	}
	return links
}
