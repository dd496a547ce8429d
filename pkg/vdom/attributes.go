package vdom

import "strings"

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Global attributes

func ID(id string) Attr             { return attr("id", id) }
func Class(classes ...string) Attr  { return attr("class", strings.Join(classes, " ")) }
func StyleAttr(style string) Attr   { return attr("style", style) }
func Lang(lang string) Attr         { return attr("lang", lang) }
func Dir(dir string) Attr           { return attr("dir", dir) }
func Hidden() Attr                  { return attr("hidden", true) }
func TitleAttr(title string) Attr   { return attr("title", title) }
func Role(role string) Attr         { return attr("role", role) }
func AriaLabel(label string) Attr   { return attr("aria-label", label) }
func AriaCurrent(value string) Attr { return attr("aria-current", value) }
func TabIndex(index int) Attr       { return attr("tabindex", index) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Links and resources

func Href(url string) Attr      { return attr("href", url) }
func Rel(rel string) Attr       { return attr("rel", rel) }
func Target(target string) Attr { return attr("target", target) }
func Src(url string) Attr       { return attr("src", url) }
func Alt(text string) Attr      { return attr("alt", text) }
func Type(t string) Attr        { return attr("type", t) }
func As(kind string) Attr       { return attr("as", kind) }
func Crossorigin() Attr         { return attr("crossorigin", true) }
func Async() Attr               { return attr("async", true) }
func Defer() Attr               { return attr("defer", true) }

// Meta

func Name(name string) Attr         { return attr("name", name) }
func Content(content string) Attr   { return attr("content", content) }
func Property(property string) Attr { return attr("property", property) }
func Charset(charset string) Attr   { return attr("charset", charset) }

// DangerouslySetInnerHTML sets the element body to unescaped HTML.
func DangerouslySetInnerHTML(html string) Attr { return attr("dangerouslySetInnerHTML", html) }
