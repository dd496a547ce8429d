package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Element is the byte range of one element in a document.
type Element struct {
	Tag string
	// Attrs are the element's attributes serialized as `k="v"` pairs, minus
	// any existing server-rendered flag.
	Attrs string
	// Start and End bound the whole element including its end tag.
	Start, End int
	// InnerStart and InnerEnd bound its contents.
	InnerStart, InnerEnd int
}

// Inner returns the element's inner HTML.
func (e Element) Inner(doc string) string {
	return doc[e.InnerStart:e.InnerEnd]
}

// FindElement locates the first element whose id attribute is id.
func FindElement(doc, id string) (Element, error) {
	z := html.NewTokenizer(strings.NewReader(doc))
	var el Element
	offset := 0
	depth := 0
	found := false

	for {
		tt := z.Next()
		raw := len(z.Raw())
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return Element{}, fmt.Errorf("html: tokenize: %w", z.Err())
		}
		tok := z.Token()

		if !found {
			if (tt == html.StartTagToken || tt == html.SelfClosingTagToken) && attrValue(tok, "id") == id {
				found = true
				el.Start = offset
				el.Tag = tok.Data
				el.Attrs = serializeAttrs(tok.Attr)
				if tt == html.SelfClosingTagToken || isVoid(el.Tag) {
					el.End = offset + raw
					el.InnerStart, el.InnerEnd = el.End, el.End
					return el, nil
				}
				el.InnerStart = offset + raw
				depth = 1
			}
			offset += raw
			continue
		}

		switch {
		case tt == html.StartTagToken && tok.Data == el.Tag:
			depth++
		case tt == html.EndTagToken && tok.Data == el.Tag:
			depth--
			if depth == 0 {
				el.InnerEnd = offset
				el.End = offset + raw
				return el, nil
			}
		}
		offset += raw
	}

	if found {
		return Element{}, fmt.Errorf("%w: element with id=%q is not closed", ErrContainerNotFound, id)
	}
	return Element{}, fmt.Errorf("%w: no element with id=%q", ErrContainerNotFound, id)
}

// SplitTopLevel splits a fragment into its top-level nodes. Whitespace
// between nodes is dropped.
func SplitTopLevel(fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var out []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			cur.WriteString(raw)
			if isVoid(string(name)) {
				if depth == 0 {
					flush()
				}
				continue
			}
			depth++
		case html.EndTagToken:
			cur.WriteString(raw)
			depth--
			if depth <= 0 {
				depth = 0
				flush()
			}
		case html.SelfClosingTagToken, html.CommentToken:
			cur.WriteString(raw)
			if depth == 0 {
				flush()
			}
		default:
			cur.WriteString(raw)
			if depth == 0 {
				flush()
			}
		}
	}
	flush()
	return out
}
