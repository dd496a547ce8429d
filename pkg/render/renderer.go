package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/ssg/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// AssetPath is prefixed to root-relative src and href values.
	AssetPath string
}

// Renderer handles server-side rendering of VNode trees to HTML.
// A Renderer collects head data and is not safe for concurrent use.
type Renderer struct {
	config RendererConfig
	head   *Head
	sinks  []*StyleSheet
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{
		config: config,
		head:   NewHead(),
	}
}

// Head returns the head data collected by previous renders.
func (r *Renderer) Head() *Head {
	return r.head
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer. A panicking
// component is reported as an error.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = fmt.Errorf("render: component panicked: %w", e)
				return
			}
			err = fmt.Errorf("render: component panicked: %v", p)
		}
	}()
	return r.renderNode(w, node)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		return r.renderFragment(w, node)
	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		return r.renderNode(w, node.Comp.Render())
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	case vdom.KindHead:
		return r.collectHead(node)
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode) error {
	tag := node.Tag

	if tag == "style" && len(r.sinks) > 0 {
		if _, ok := node.Props[collectAttr]; ok {
			r.sinks[len(r.sinks)-1].add(textContent(node))
			return nil
		}
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node.Props); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(tag) {
		return nil
	}

	if rawHTML, ok := node.Props["dangerouslySetInnerHTML"].(string); ok {
		if _, err := io.WriteString(w, rawHTML); err != nil {
			return err
		}
	} else if isRawTextElement(tag) {
		if _, err := io.WriteString(w, textContent(node)); err != nil {
			return err
		}
	} else {
		for _, child := range node.Children {
			if err := r.renderNode(w, child); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "</"+tag+">")
	return err
}

// renderFragment renders a fragment's children without a wrapper element.
// A fragment produced by StyleSheet.Collect scopes style collection.
func (r *Renderer) renderFragment(w io.Writer, node *vdom.VNode) error {
	if sink, ok := node.Props[styleSinkProp].(*StyleSheet); ok {
		r.sinks = append(r.sinks, sink)
		defer func() { r.sinks = r.sinks[:len(r.sinks)-1] }()
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// collectHead records head nodes instead of writing them.
func (r *Renderer) collectHead(node *vdom.VNode) error {
	switch node.Tag {
	case "html":
		r.head.mergeAttrs(r.head.htmlAttrs, node.Props)
		return nil
	case "body":
		r.head.mergeAttrs(r.head.bodyAttrs, node.Props)
		return nil
	}
	for _, child := range node.Children {
		var buf bytes.Buffer
		if err := r.renderNode(&buf, child); err != nil {
			return err
		}
		r.head.add(headSection(child), buf.String())
	}
	return nil
}

// renderAttributes renders all attributes for an element.
func (r *Renderer) renderAttributes(w io.Writer, props vdom.Props) error {
	_, err := io.WriteString(w, r.attributeString(props, true))
	return err
}

// attributeString serializes props in sorted key order. With leading set,
// every attribute is preceded by a space.
func (r *Renderer) attributeString(props vdom.Props, leading bool) string {
	if len(props) == 0 {
		return ""
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		value := props[key]

		// Skip internal props
		if strings.HasPrefix(key, "_") {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		case "dangerouslySetInnerHTML", "key":
			continue
		}

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					parts = append(parts, key)
				}
				continue
			}
		}

		strValue := attrToString(value)
		if (key == "src" || key == "href") && r.config.AssetPath != "" && strings.HasPrefix(strValue, "/") && !strings.HasPrefix(strValue, "//") {
			strValue = strings.TrimSuffix(r.config.AssetPath, "/") + strValue
		}
		if strValue != "" {
			parts = append(parts, fmt.Sprintf(`%s="%s"`, key, EscapeAttr(strValue)))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	s := strings.Join(parts, " ")
	if leading {
		return " " + s
	}
	return s
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// textContent concatenates the text and raw children of node.
func textContent(node *vdom.VNode) string {
	var b strings.Builder
	for _, c := range node.Children {
		if c != nil && (c.Kind == vdom.KindText || c.Kind == vdom.KindRaw) {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}
