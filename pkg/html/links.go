package html

import (
	"regexp"
	"strings"

	"github.com/vango-dev/ssg/pkg/assets"
)

// InjectLinks adds link tags before </head>. Links whose href already
// appears in the document are skipped.
func InjectLinks(doc string, links []assets.Link) string {
	var b strings.Builder
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		if seen[l.Href] || strings.Contains(doc, `href="`+l.Href+`"`) {
			continue
		}
		seen[l.Href] = true
		b.WriteString(l.HTML())
	}
	return InjectHead(doc, b.String())
}

var linkTag = regexp.MustCompile(`<link\b[^>]*>`)

var stylesheetRel = regexp.MustCompile(`\brel=["']?stylesheet["']?`)

var crossoriginAttr = regexp.MustCompile(`\scrossorigin\b`)

// AddCrossorigin marks every stylesheet link as crossorigin.
func AddCrossorigin(doc string) string {
	return linkTag.ReplaceAllStringFunc(doc, func(tag string) string {
		if !stylesheetRel.MatchString(tag) || crossoriginAttr.MatchString(tag) {
			return tag
		}
		if strings.HasSuffix(tag, "/>") {
			return strings.TrimRight(strings.TrimSuffix(tag, "/>"), " ") + " crossorigin />"
		}
		return strings.TrimSuffix(tag, ">") + " crossorigin>"
	})
}
