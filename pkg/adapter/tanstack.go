package adapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/vango-dev/ssg/pkg/html"
	"github.com/vango-dev/ssg/pkg/render"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

// MetaContainerID is the id of the hidden element head tags are rendered into.
const MetaContainerID = "__SSG_META_CONTAINER__"

type tanstackAdapter struct {
	c *Context
}

// memoryRouter is a single-use router whose history holds one entry.
type memoryRouter struct {
	c       *Context
	history []string
	matches []routes.Match
	data    map[string]any
	req     *http.Request
}

func newMemoryRouter(c *Context, path string) *memoryRouter {
	return &memoryRouter{c: c, history: []string{path}}
}

func (r *memoryRouter) location() string {
	return r.history[len(r.history)-1]
}

// load matches the current location and runs its loaders.
func (r *memoryRouter) load(ctx context.Context) error {
	path := r.location()
	req, err := newRequest(ctx, r.c.basename(), path)
	if err != nil {
		return err
	}
	matches, err := routes.MatchPath(ctx, r.c.Routes, req.URL.Path, r.c.basename())
	if err != nil {
		return err
	}
	if matches == nil {
		return &NotFoundError{Path: path}
	}
	data, err := loadMatches(ctx, path, req, matches)
	if err != nil {
		return err
	}
	r.req, r.matches, r.data = req, matches, data
	return nil
}

func (a *tanstackAdapter) Render(ctx context.Context, path string) (*RenderResult, error) {
	c := a.c
	router := newMemoryRouter(c, path)
	if err := router.load(ctx); err != nil {
		switch err.(type) {
		case *ResponseError, *NotFoundError:
			return nil, err
		}
		return nil, &RenderError{Path: path, Err: err}
	}

	// The renderer is reached through the component so the marker renders
	// the head tags collected by everything before it.
	var renderer *render.Renderer
	page := c.wrap(composeMatches(router.matches, router.data))
	app := vdom.Fragment(
		page,
		vdom.Div(vdom.ID(MetaContainerID), vdom.Hidden(),
			vdom.Func(func() *vdom.VNode {
				return vdom.Raw(strings.Join(renderer.Head().Tags(), ""))
			}),
		),
	)

	var sc render.StyleCollector
	if c.StyleCollector != nil {
		sc = c.StyleCollector()
		app = sc.Collect(app)
	}
	renderer = render.NewRenderer(render.RendererConfig{AssetPath: c.AssetPath})
	out, err := renderer.RenderToString(app)
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}

	appHTML, meta, err := extractMeta(out)
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}
	c.appRendered(path, appHTML)

	res := &RenderResult{
		AppHTML:        appHTML,
		HTMLAttributes: renderer.Head().HTMLAttributes(),
		BodyAttributes: renderer.Head().BodyAttributes(),
		MetaAttributes: meta,
		RouterContext:  RouterContext{LoaderData: router.data, Matches: router.matches},
	}
	if sc != nil {
		res.StyleTag = sc.StyleTag()
	}
	return res, nil
}

// extractMeta removes the marker element from appHTML and returns its
// top-level children as head tags.
func extractMeta(appHTML string) (string, []string, error) {
	el, err := html.FindElement(appHTML, MetaContainerID)
	if err != nil {
		return "", nil, err
	}
	meta := html.SplitTopLevel(el.Inner(appHTML))
	return appHTML[:el.Start] + appHTML[el.End:], meta, nil
}

func (a *tanstackAdapter) HandleLoader(w http.ResponseWriter, r *http.Request) {
	handleLoader(a.c, w, r)
}
