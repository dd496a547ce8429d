package render

import (
	"strings"

	"github.com/vango-dev/ssg/pkg/vdom"
)

// Head sections, in document order.
const (
	SectionTitle  = "title"
	SectionMeta   = "meta"
	SectionLink   = "link"
	SectionStyle  = "style"
	SectionScript = "script"
	SectionOther  = "other"
)

var sectionOrder = []string{SectionTitle, SectionMeta, SectionLink, SectionStyle, SectionScript, SectionOther}

// Head accumulates head tags and root element attributes declared while
// rendering. The last title wins; other tags are kept in declaration order.
type Head struct {
	sections  map[string][]string
	htmlAttrs vdom.Props
	bodyAttrs vdom.Props
}

// NewHead creates an empty Head.
func NewHead() *Head {
	return &Head{
		sections:  make(map[string][]string),
		htmlAttrs: make(vdom.Props),
		bodyAttrs: make(vdom.Props),
	}
}

func headSection(n *vdom.VNode) string {
	if n == nil || n.Kind != vdom.KindElement {
		return SectionOther
	}
	switch n.Tag {
	case "title", "meta", "link", "style", "script":
		return n.Tag
	case "base", "noscript":
		return SectionMeta
	}
	return SectionOther
}

func (h *Head) add(section, markup string) {
	if markup == "" {
		return
	}
	if section == SectionTitle {
		h.sections[section] = []string{markup}
		return
	}
	h.sections[section] = append(h.sections[section], markup)
}

func (h *Head) mergeAttrs(dst, src vdom.Props) {
	for k, v := range src {
		dst[k] = v
	}
}

// Section returns the serialized tags of one section joined together.
func (h *Head) Section(name string) string {
	return strings.Join(h.sections[name], "")
}

// Tags returns one string per non-empty section in document order.
func (h *Head) Tags() []string {
	var tags []string
	for _, s := range sectionOrder {
		if v := h.Section(s); v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}

// HTMLAttributes returns the <html> attributes as `k="v"` pairs.
func (h *Head) HTMLAttributes() string {
	return (&Renderer{}).attributeString(h.htmlAttrs, false)
}

// BodyAttributes returns the <body> attributes as `k="v"` pairs.
func (h *Head) BodyAttributes() string {
	return (&Renderer{}).attributeString(h.bodyAttrs, false)
}
