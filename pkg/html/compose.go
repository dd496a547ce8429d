package html

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ServerRenderedAttr marks a container whose contents were rendered ahead of time.
const ServerRenderedAttr = `data-server-rendered="true"`

// HashVar is the global the hydration hint assigns the build hash to.
const HashVar = "window.__SSG_HASH__"

// ErrContainerNotFound is returned when the template has no element with
// the configured container id.
var ErrContainerNotFound = errors.New("html: root container not found")

// Options configures Render.
type Options struct {
	// Template is the application's index.html.
	Template string
	// ContainerID is the id of the element the app mounts into. Default "root".
	ContainerID string
	// AppHTML is the rendered application markup.
	AppHTML string
	// MetaAttributes are head tags inserted right after <head>.
	MetaAttributes []string
	// HTMLAttributes and BodyAttributes are serialized `k="v"` pairs.
	HTMLAttributes string
	BodyAttributes string
	// Hash, when set, is published to the client through HashVar. Only
	// builds set it: the hint names the static loader data manifest, and the
	// dev server answers loader requests directly instead.
	Hash string
}

// HashScript returns the hydration hint script for a build hash.
func HashScript(hash string) string {
	return fmt.Sprintf("<script>%s = '%s'</script>", HashVar, hash)
}

// Render composes the page document.
func Render(opts Options) (string, error) {
	id := opts.ContainerID
	if id == "" {
		id = "root"
	}

	doc := opts.Template
	if len(opts.MetaAttributes) > 0 {
		doc = insertAfterHeadOpen(doc, strings.Join(opts.MetaAttributes, ""))
	}
	doc = addTagAttributes(doc, "html", opts.HTMLAttributes)
	doc = addTagAttributes(doc, "body", opts.BodyAttributes)

	hint := ""
	if opts.Hash != "" {
		hint = HashScript(opts.Hash)
	}

	container := fmt.Sprintf(`<div id="%s"></div>`, id)
	if strings.Contains(doc, container) {
		filled := fmt.Sprintf(`<div id="%s" %s>%s</div>%s`, id, ServerRenderedAttr, opts.AppHTML, hint)
		return strings.Replace(doc, container, filled, 1), nil
	}

	el, err := FindElement(doc, id)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(doc[:el.Start])
	fmt.Fprintf(&b, "<%s %s %s>%s</%s>%s", el.Tag, el.Attrs, ServerRenderedAttr, opts.AppHTML, el.Tag, hint)
	b.WriteString(doc[el.End:])
	return b.String(), nil
}

func attrValue(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func serializeAttrs(attrs []html.Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a.Key+`="`+a.Val+`"` == ServerRenderedAttr {
			continue
		}
		parts = append(parts, fmt.Sprintf(`%s="%s"`, a.Key, html.EscapeString(a.Val)))
	}
	return strings.Join(parts, " ")
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

func isVoid(tag string) bool { return voidTags[tag] }

// headOpenEnd returns the index just past the <head> start tag, or -1.
func headOpenEnd(doc string) int {
	lower := strings.ToLower(doc)
	from := 0
	for {
		i := strings.Index(lower[from:], "<head")
		if i < 0 {
			return -1
		}
		i += from
		next := i + len("<head")
		if next < len(lower) && (lower[next] == '>' || lower[next] == ' ' || lower[next] == '\n' || lower[next] == '\t') {
			if j := strings.IndexByte(lower[next:], '>'); j >= 0 {
				return next + j + 1
			}
			return -1
		}
		from = next
	}
}

func insertAfterHeadOpen(doc, markup string) string {
	i := headOpenEnd(doc)
	if i < 0 {
		return doc
	}
	return doc[:i] + markup + doc[i:]
}

// addTagAttributes appends attrs to the first <tag start tag.
func addTagAttributes(doc, tag, attrs string) string {
	attrs = strings.TrimSpace(attrs)
	if attrs == "" {
		return doc
	}
	open := "<" + tag
	from := 0
	for {
		i := strings.Index(doc[from:], open)
		if i < 0 {
			return doc
		}
		i += from
		next := i + len(open)
		if next < len(doc) && (doc[next] == '>' || doc[next] == ' ' || doc[next] == '\n') {
			return doc[:next] + " " + attrs + doc[next:]
		}
		from = next
	}
}

// PrependStyle inserts a style payload at the start of <head>.
func PrependStyle(doc, styleTag string) string {
	if styleTag == "" {
		return doc
	}
	return insertAfterHeadOpen(doc, styleTag)
}

// InjectHead inserts markup right before </head>. Documents without a head
// are returned unchanged.
func InjectHead(doc, markup string) string {
	if markup == "" {
		return doc
	}
	i := strings.LastIndex(strings.ToLower(doc), "</head>")
	if i < 0 {
		return doc
	}
	var buf bytes.Buffer
	buf.Grow(len(doc) + len(markup))
	buf.WriteString(doc[:i])
	buf.WriteString(markup)
	buf.WriteString(doc[i:])
	return buf.String()
}
