package adapter

import (
	"context"
	"net/http"
)

type singlePageAdapter struct {
	c *Context
}

func (a *singlePageAdapter) Render(ctx context.Context, path string) (*RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := renderTree(a.c, a.c.App(nil))
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}
	a.c.appRendered(path, out.html)
	return &RenderResult{
		AppHTML:        out.html,
		HTMLAttributes: out.head.HTMLAttributes(),
		BodyAttributes: out.head.BodyAttributes(),
		MetaAttributes: out.meta,
		StyleTag:       out.style,
		RouterContext:  RouterContext{LoaderData: map[string]any{}},
	}, nil
}

// HandleLoader answers 404: a single page app has no routes.
func (a *singlePageAdapter) HandleLoader(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(DataParam)
	http.Error(w, "Route not found: "+id, http.StatusNotFound)
}
