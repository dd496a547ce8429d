package adapter

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/ssg/pkg/html"
	"github.com/vango-dev/ssg/pkg/render"
	"github.com/vango-dev/ssg/pkg/routepath"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

// requestOrigin is the origin of synthetic loader requests.
const requestOrigin = "http://localhost"

func newRequest(ctx context.Context, base, path string) (*http.Request, error) {
	u := requestOrigin + routepath.JoinSegments(base, path)
	return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
}

// loadMatches runs every matched loader concurrently. Routes without a
// loader are recorded with nil data.
func loadMatches(ctx context.Context, path string, req *http.Request, matches []routes.Match) (map[string]any, error) {
	data := make(map[string]any, len(matches))
	results := make([]any, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range matches {
		if m.Route.Loader == nil {
			continue
		}
		g.Go(func() error {
			v, err := m.Route.Loader(gctx, routes.LoaderArgs{Request: req.WithContext(gctx), Params: m.Params})
			if err != nil {
				return err
			}
			if resp, ok := v.(*routes.Response); ok {
				return &ResponseError{Path: path, RouteID: m.Route.ID, Response: resp}
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, m := range matches {
		data[m.Route.ID] = results[i]
	}
	return data, nil
}

// composeMatches builds the page tree leaf first, handing each child to its
// parent as Outlet. Routes without a component pass their outlet through.
// Components run inside the renderer, so a panic surfaces as a render error.
func composeMatches(matches []routes.Match, data map[string]any) *vdom.VNode {
	var outlet *vdom.VNode
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.Route.Component == nil {
			continue
		}
		props := routes.Props{
			Pathname:   m.Pathname,
			Params:     m.Params,
			LoaderData: data[m.Route.ID],
			Outlet:     outlet,
		}
		component := m.Route.Component
		outlet = &vdom.VNode{
			Kind: vdom.KindComponent,
			Comp: vdom.Func(func() *vdom.VNode { return component(props) }),
		}
	}
	return outlet
}

type rendered struct {
	html  string
	head  *render.Head
	meta  []string
	style string
}

// renderTree renders app with style collection and head capture.
func renderTree(c *Context, app *vdom.VNode) (*rendered, error) {
	var sc render.StyleCollector
	if c.StyleCollector != nil {
		sc = c.StyleCollector()
	}
	if sc != nil {
		app = sc.Collect(app)
	}

	r := render.NewRenderer(render.RendererConfig{AssetPath: c.AssetPath})
	out, err := r.RenderToString(app)
	if err != nil {
		return nil, err
	}
	res := &rendered{html: out, head: r.Head(), meta: headTags(r.Head())}
	if sc != nil {
		res.style = sc.StyleTag()
	}
	return res, nil
}

// headTags returns the collected head content one tag per entry.
func headTags(h *render.Head) []string {
	var tags []string
	for _, section := range h.Tags() {
		tags = append(tags, html.SplitTopLevel(section)...)
	}
	return tags
}

func (c *Context) wrap(page *vdom.VNode) *vdom.VNode {
	if c.App == nil {
		return page
	}
	return c.App(page)
}

func (c *Context) appRendered(path, appHTML string) {
	for _, fn := range c.OnAppRendered {
		fn(path, appHTML)
	}
}

// basename is the router basename, "/" when unset.
func (c *Context) basename() string {
	if c.Base == "" {
		return "/"
	}
	return c.Base
}
