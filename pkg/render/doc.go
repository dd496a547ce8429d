// Package render provides server-side rendering of vdom trees to HTML.
//
// # Rendering
//
// The Renderer walks a VNode tree and writes HTML. Text and attribute values
// are escaped; attributes are emitted in sorted order so output is stable
// across runs:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(app)
//	head := r.Head()
//
// # Head Collection
//
// Head nodes (vdom.HeadTags, vdom.HTMLAttributes, vdom.BodyAttributes) are
// not written inline. The renderer records them in a Head that exposes the
// serialized tags and attribute strings for the page shell.
//
// # Style Collection
//
// A StyleCollector gathers component styles into a single tag. The default
// StyleSheet hoists every <style data-ssg-collect> element rendered inside
// the tree it wraps.
package render
