package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// newElement builds an element from factory arguments. Attr and []Attr set
// attributes, everything else is a child (see appendChild). Attributes with
// an empty key are dropped.
func newElement(tag string, args []any) *VNode {
	node := &VNode{Kind: KindElement, Tag: tag, Props: make(Props)}
	for _, arg := range args {
		switch v := arg.(type) {
		case Attr:
			node.Props.set(v)
		case []Attr:
			for _, a := range v {
				node.Props.set(a)
			}
		default:
			node.Children = appendChild(node.Children, arg)
		}
	}
	return node
}

func (p Props) set(a Attr) {
	if !a.IsEmpty() {
		p[a.Key] = a.Value
	}
}

// appendChild appends a child argument: *VNode, []*VNode, Component or a
// string, which becomes a text node. Nil and unknown values are ignored.
func appendChild(children []*VNode, arg any) []*VNode {
	switch v := arg.(type) {
	case *VNode:
		if v != nil {
			children = append(children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				children = append(children, c)
			}
		}
	case Component:
		children = append(children, &VNode{Kind: KindComponent, Comp: v})
	case string:
		children = append(children, Text(v))
	}
	return children
}

// Document structure elements

func Html(args ...any) *VNode  { return newElement("html", args) }
func Title(args ...any) *VNode { return newElement("title", args) }
func Meta(args ...any) *VNode  { return newElement("meta", args) }
func Link(args ...any) *VNode  { return newElement("link", args) }
func Base(args ...any) *VNode  { return newElement("base", args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return newElement("header", args) }
func Footer(args ...any) *VNode  { return newElement("footer", args) }
func Main(args ...any) *VNode    { return newElement("main", args) }
func Nav(args ...any) *VNode     { return newElement("nav", args) }
func Section(args ...any) *VNode { return newElement("section", args) }
func Article(args ...any) *VNode { return newElement("article", args) }
func Aside(args ...any) *VNode   { return newElement("aside", args) }
func H1(args ...any) *VNode      { return newElement("h1", args) }
func H2(args ...any) *VNode      { return newElement("h2", args) }
func H3(args ...any) *VNode      { return newElement("h3", args) }

// Text content elements

func Div(args ...any) *VNode  { return newElement("div", args) }
func P(args ...any) *VNode    { return newElement("p", args) }
func Span(args ...any) *VNode { return newElement("span", args) }
func Pre(args ...any) *VNode  { return newElement("pre", args) }
func Ul(args ...any) *VNode   { return newElement("ul", args) }
func Ol(args ...any) *VNode   { return newElement("ol", args) }
func Li(args ...any) *VNode   { return newElement("li", args) }
func Hr(args ...any) *VNode   { return newElement("hr", args) }

// Inline text semantics

func A(args ...any) *VNode      { return newElement("a", args) }
func Strong(args ...any) *VNode { return newElement("strong", args) }
func Em(args ...any) *VNode     { return newElement("em", args) }
func Code(args ...any) *VNode   { return newElement("code", args) }
func Br(args ...any) *VNode     { return newElement("br", args) }
func Img(args ...any) *VNode    { return newElement("img", args) }

// Scripting and styling elements

func Script(args ...any) *VNode   { return newElement("script", args) }
func Noscript(args ...any) *VNode { return newElement("noscript", args) }
func Style(args ...any) *VNode    { return newElement("style", args) }

// Element creates an element with any tag name.
func Element(tag string, args ...any) *VNode {
	return newElement(tag, args)
}
