package html

import (
	"path"
	"strings"

	"github.com/yosssi/gohtml"
)

// Directory styles for output files.
const (
	DirStyleFlat   = "flat"
	DirStyleNested = "nested"
)

// Filename maps a page path to a slash-separated file name relative to the
// output directory. Paths ending in "/" are directory indices. Flat style
// maps /a to a.html; nested maps it to a/index.html.
func Filename(pagePath, dirStyle string) string {
	p := strings.TrimLeft(pagePath, "/")
	if p == "" {
		return "index.html"
	}
	if strings.HasSuffix(p, "/") {
		return p + "index.html"
	}
	if dirStyle == DirStyleNested {
		return path.Join(p, "index.html")
	}
	return p + ".html"
}

// Format pretty-prints a document.
func Format(doc string) string {
	return gohtml.Format(doc)
}
