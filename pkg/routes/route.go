package routes

import (
	"context"
	"net/http"

	"github.com/vango-dev/ssg/pkg/vdom"
)

// Route is a node of the route tree.
type Route struct {
	// ID identifies the route in loader data. Prepare assigns one when empty.
	ID string

	// Path is the segment pattern, relative to the parent unless it starts
	// with "/". Empty with Index false makes a layout-only node.
	Path string

	// Index marks the default child rendered at the parent's path.
	Index bool

	// Children are nested routes, owned by this node.
	Children []*Route

	// Entry is the build entry module id used for asset resolution.
	Entry string

	// Chunks declares the code-split module ids this route pulls in.
	Chunks []string

	// LazySource is the source text of the lazy resolver, scanned for
	// dynamic import targets when Chunks is empty.
	LazySource string

	// Loader produces the route's data.
	Loader LoaderFunc

	// Lazy resolves additional fields the first time the node is visited.
	Lazy LazyFunc

	// GetStaticPaths lists concrete paths for a dynamic segment.
	GetStaticPaths StaticPathsFunc

	// Component renders the route. Outlet holds the matched child.
	Component ComponentFunc

	// lazy memoizes Lazy for the tree Prepare produced this node in.
	lazy *lazyCell
}

// LoaderArgs is passed to a route loader.
type LoaderArgs struct {
	Request *http.Request
	Params  map[string]string
}

// LoaderFunc produces route data. Returning a *Response hands the response
// to the caller instead of data.
type LoaderFunc func(ctx context.Context, args LoaderArgs) (any, error)

// LazyFunc returns fields to merge over the node it belongs to. Only
// non-zero fields of the result are applied.
type LazyFunc func(ctx context.Context) (*Route, error)

// StaticPathsFunc lists concrete path values for a dynamic route.
type StaticPathsFunc func(ctx context.Context) ([]string, error)

// Props are passed to a route component.
type Props struct {
	// Pathname is the matched portion of the URL.
	Pathname string
	// Params holds parameter values for the whole match.
	Params map[string]string
	// LoaderData is this route's loader result, or nil.
	LoaderData any
	// Outlet is the rendered child route, or nil at a leaf.
	Outlet *vdom.VNode
}

// ComponentFunc renders a route.
type ComponentFunc func(Props) *vdom.VNode

// Response is a raw HTTP response produced by a loader, such as a redirect.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Redirect creates a redirect response.
func Redirect(location string, status int) *Response {
	if status == 0 {
		status = http.StatusFound
	}
	h := make(http.Header)
	h.Set("Location", location)
	return &Response{Status: status, Header: h}
}

// IsRedirect reports whether the response is a 3xx with a Location.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400 && r.Header.Get("Location") != ""
}

// WriteTo writes the response to w.
func (r *Response) WriteTo(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 {
		w.Write(r.Body)
	}
}
