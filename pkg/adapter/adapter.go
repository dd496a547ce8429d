package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vango-dev/ssg/pkg/render"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

// Kind selects the routing paradigm.
type Kind string

const (
	KindRemix      Kind = "remix"
	KindTanstack   Kind = "tanstack"
	KindSinglePage Kind = "single-page"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRemix, KindTanstack, KindSinglePage:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ErrUnknownKind is returned by New for an unsupported Kind.
var ErrUnknownKind = errors.New("adapter: unknown kind")

// Context carries everything an adapter needs to render.
type Context struct {
	Kind Kind

	// Base is the router basename, e.g. "/" or "/app/".
	Base string

	// Routes is the prepared route tree. Unused by KindSinglePage.
	Routes []*routes.Route

	// App renders the whole application for KindSinglePage. For the router
	// kinds it may wrap the routed page; the page arrives as its argument.
	App func(page *vdom.VNode) *vdom.VNode

	// StyleCollector returns a fresh collector per render. Nil disables
	// style collection.
	StyleCollector func() render.StyleCollector

	// AssetPath is prefixed to root-relative src and href attributes.
	AssetPath string

	// OnAppRendered callbacks run after each successful render with the
	// page path and the app markup.
	OnAppRendered []func(path, appHTML string)
}

// RouterContext is the router state a render produced.
type RouterContext struct {
	// LoaderData maps route id to loader result, nil for routes without
	// a loader.
	LoaderData map[string]any
	Matches    []routes.Match
}

// RenderResult is the output of rendering one path.
type RenderResult struct {
	AppHTML        string
	HTMLAttributes string
	BodyAttributes string
	MetaAttributes []string
	StyleTag       string
	RouterContext  RouterContext
}

// Adapter renders pages and serves the loader sub-protocol.
type Adapter interface {
	// Render renders exactly one path.
	Render(ctx context.Context, path string) (*RenderResult, error)
	// HandleLoader answers a request carrying DataParam with one route's
	// loader payload.
	HandleLoader(w http.ResponseWriter, r *http.Request)
}

// New returns the adapter selected by c.Kind.
func New(c *Context) (Adapter, error) {
	if c == nil {
		return nil, errors.New("adapter: nil context")
	}
	switch c.Kind {
	case KindRemix:
		return &remixAdapter{c: c}, nil
	case KindTanstack:
		return &tanstackAdapter{c: c}, nil
	case KindSinglePage:
		if c.App == nil {
			return nil, errors.New("adapter: single-page requires App")
		}
		return &singlePageAdapter{c: c}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
}

// ResponseError reports a loader that produced a raw response, such as a
// redirect, while a page was being rendered.
type ResponseError struct {
	Path     string
	RouteID  string
	Response *routes.Response
}

func (e *ResponseError) Error() string {
	if e.Response.IsRedirect() {
		return fmt.Sprintf("adapter: route %q redirected %s to %s", e.RouteID, e.Path, e.Response.Header.Get("Location"))
	}
	return fmt.Sprintf("adapter: route %q returned a %d response for %s", e.RouteID, e.Response.Status, e.Path)
}

// NotFoundError reports a path no route matches.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("adapter: no route matches %s", e.Path)
}

// RenderError wraps a failure while rendering a path.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("adapter: render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
