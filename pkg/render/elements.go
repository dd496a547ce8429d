package render

import "github.com/vango-dev/ssg/pkg/vdom"

// rawTextElements hold text that must not be entity-escaped.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered as just the attribute name.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"crossorigin":     true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"hidden":          true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"selected":        true,
}

func isVoidElement(tag string) bool    { return vdom.IsVoidElement(tag) }
func isRawTextElement(tag string) bool { return rawTextElements[tag] }
func isBooleanAttr(name string) bool   { return booleanAttrs[name] }
