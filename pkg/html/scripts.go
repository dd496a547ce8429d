package html

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultEntry is used when the template declares no module script.
const DefaultEntry = "src/main.ts"

// RewriteScripts adds a loading mode (async, defer or "async defer") to
// module scripts. "" and "sync" leave the document unchanged.
func RewriteScripts(doc, mode string) string {
	if mode == "" || mode == "sync" {
		return doc
	}
	return strings.ReplaceAll(doc, `<script type="module" `, `<script type="module" `+mode+` `)
}

// DetectEntry returns the src of the first module script in the template,
// without a leading slash, or DefaultEntry.
func DetectEntry(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return DefaultEntry
		}
		if tt != html.StartTagToken {
			continue
		}
		tok := z.Token()
		if tok.Data != "script" {
			continue
		}
		if attrValue(tok, "type") != "module" {
			continue
		}
		if src := attrValue(tok, "src"); src != "" {
			return strings.TrimPrefix(src, "/")
		}
	}
}
