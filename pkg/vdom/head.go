package vdom

// HeadTags declares elements (title, meta, link, script, style) that belong
// in the document head.
func HeadTags(children ...*VNode) *VNode {
	node := &VNode{Kind: KindHead}
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// HTMLAttributes declares attributes for the document's <html> element.
func HTMLAttributes(attrs ...Attr) *VNode {
	return headAttrs("html", attrs)
}

// BodyAttributes declares attributes for the document's <body> element.
func BodyAttributes(attrs ...Attr) *VNode {
	return headAttrs("body", attrs)
}

func headAttrs(tag string, attrs []Attr) *VNode {
	node := &VNode{Kind: KindHead, Tag: tag, Props: make(Props, len(attrs))}
	for _, a := range attrs {
		if !a.IsEmpty() {
			node.Props[a.Key] = a.Value
		}
	}
	return node
}
