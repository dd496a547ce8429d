// Package critical inlines render-blocking stylesheets into rendered pages.
//
// Processing runs after a page is composed and before it is written. The
// orchestrator runs it in its own serialized scheduler class, so a
// Processor never sees two documents at once.
package critical

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

// Processor rewrites a composed document.
type Processor interface {
	Process(ctx context.Context, doc string) (string, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, doc string) (string, error)

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, doc string) (string, error) {
	return f(ctx, doc)
}

// Inliner copies local stylesheets into a <style> block in the head and
// turns the original links into non-blocking loads.
type Inliner struct {
	// Root is the directory hrefs are resolved against, usually the build
	// output directory.
	Root string
	// PublicPath is the URL prefix stripped from hrefs before resolving.
	PublicPath string
	// MaxInlineSize skips stylesheets larger than this many bytes. 0 means
	// no limit.
	MaxInlineSize int
	// Minify compresses inlined CSS.
	Minify bool

	m *minify.M
}

// NewInliner creates an Inliner.
func NewInliner(root, publicPath string, maxInlineSize int, minifyCSS bool) *Inliner {
	in := &Inliner{Root: root, PublicPath: publicPath, MaxInlineSize: maxInlineSize, Minify: minifyCSS}
	if minifyCSS {
		in.m = minify.New()
		in.m.AddFunc("text/css", css.Minify)
	}
	return in
}

var (
	linkTag       = regexp.MustCompile(`<link\b[^>]*>`)
	relStylesheet = regexp.MustCompile(`\brel=["']?stylesheet["']?`)
	hrefAttr      = regexp.MustCompile(`\bhref=["']([^"']+)["']`)
	mediaAttr     = regexp.MustCompile(`\bmedia=`)
)

// Process implements Processor.
func (in *Inliner) Process(ctx context.Context, doc string) (string, error) {
	var styles strings.Builder
	var procErr error

	out := linkTag.ReplaceAllStringFunc(doc, func(tag string) string {
		if procErr != nil || !relStylesheet.MatchString(tag) || mediaAttr.MatchString(tag) {
			return tag
		}
		if err := ctx.Err(); err != nil {
			procErr = err
			return tag
		}
		m := hrefAttr.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		file, ok := in.resolve(m[1])
		if !ok {
			return tag
		}
		data, err := os.ReadFile(file)
		if err != nil {
			// Missing stylesheets stay as plain links.
			return tag
		}
		if in.MaxInlineSize > 0 && len(data) > in.MaxInlineSize {
			return tag
		}
		sheet := string(data)
		if in.m != nil {
			small, err := in.m.String("text/css", sheet)
			if err != nil {
				procErr = fmt.Errorf("critical: minify %s: %w", m[1], err)
				return tag
			}
			sheet = small
		}
		styles.WriteString(sheet)
		return deferLink(tag)
	})
	if procErr != nil {
		return "", procErr
	}
	if styles.Len() == 0 {
		return doc, nil
	}

	style := "<style>" + styles.String() + "</style>"
	i := strings.Index(strings.ToLower(out), "</head>")
	if i < 0 {
		return style + out, nil
	}
	return out[:i] + style + out[i:], nil
}

// resolve maps an href to a file under Root. External URLs are not inlined.
func (in *Inliner) resolve(href string) (string, bool) {
	if strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return "", false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if in.PublicPath != "" && in.PublicPath != "/" {
		href = strings.TrimPrefix(href, strings.TrimSuffix(in.PublicPath, "/"))
	}
	rel := filepath.FromSlash(strings.TrimPrefix(href, "/"))
	if rel == "" || strings.HasPrefix(filepath.Clean(rel), "..") {
		return "", false
	}
	return filepath.Join(in.Root, rel), true
}

// deferLink makes a stylesheet link load without blocking render.
func deferLink(tag string) string {
	suffix := ">"
	body := strings.TrimSuffix(tag, ">")
	if strings.HasSuffix(body, "/") {
		body = strings.TrimRight(strings.TrimSuffix(body, "/"), " ")
		suffix = " />"
	}
	return body + ` media="print" onload="this.media='all'"` + suffix
}
