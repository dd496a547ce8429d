// Package html composes the final page document from the application's HTML
// template and one page's render result.
//
// Render performs the container substitution:
//
//	<div id="root"></div>
//
// becomes
//
//	<div id="root" data-server-rendered="true">APP</div><script>window.__SSG_HASH__ = 'h'</script>
//
// The exact empty container is replaced directly. Any other form of the
// container element (extra attributes, existing children, another tag) is
// located with an HTML tokenizer. A template without the container is an
// error, since the output would never hydrate.
//
// The remaining helpers are the small string passes applied around Render:
// head injection, script loading mode, entry detection, formatting, and the
// output file name for a page path.
package html
