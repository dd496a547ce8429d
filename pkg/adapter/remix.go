package adapter

import (
	"context"
	"net/http"

	"github.com/vango-dev/ssg/pkg/routes"
)

type remixAdapter struct {
	c *Context
}

func (a *remixAdapter) Render(ctx context.Context, path string) (*RenderResult, error) {
	c := a.c
	req, err := newRequest(ctx, c.basename(), path)
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}

	matches, err := routes.MatchPath(ctx, c.Routes, req.URL.Path, c.basename())
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}
	if matches == nil {
		return nil, &NotFoundError{Path: path}
	}

	data, err := loadMatches(ctx, path, req, matches)
	if err != nil {
		if _, ok := err.(*ResponseError); ok {
			return nil, err
		}
		return nil, &RenderError{Path: path, Err: err}
	}

	out, err := renderTree(c, c.wrap(composeMatches(matches, data)))
	if err != nil {
		return nil, &RenderError{Path: path, Err: err}
	}
	c.appRendered(path, out.html)

	return &RenderResult{
		AppHTML:        out.html,
		HTMLAttributes: out.head.HTMLAttributes(),
		BodyAttributes: out.head.BodyAttributes(),
		MetaAttributes: out.meta,
		StyleTag:       out.style,
		RouterContext:  RouterContext{LoaderData: data, Matches: matches},
	}, nil
}

func (a *remixAdapter) HandleLoader(w http.ResponseWriter, r *http.Request) {
	handleLoader(a.c, w, r)
}
