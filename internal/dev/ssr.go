package dev

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/assets"
	"github.com/vango-dev/ssg/pkg/devgraph"
	"github.com/vango-dev/ssg/pkg/html"
	"github.com/vango-dev/ssg/pkg/routepath"
	"github.com/vango-dev/ssg/pkg/routes"
)

// SSROptions configures the SSR handler.
type SSROptions struct {
	Config  *config.Config
	Adapter adapter.Context

	// Graph resolves dev modules for stylesheet discovery. Nil skips it.
	Graph devgraph.Graph

	// Index applies the bundler's HTML transforms. Nil uses the template
	// as is.
	Index devgraph.IndexTransformer

	Recovery *ErrorRecovery

	// Reload injects the reload client into rendered pages.
	Reload bool

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Next serves requests that are not page navigations.
	Next http.Handler
}

// SSR renders page navigations on demand. Loader sub-requests go straight
// to the adapter; everything else falls through to Next.
type SSR struct {
	opts SSROptions
}

// NewSSR creates the SSR handler. Routes without an id get the positional
// ids the build writes into the loader data manifest.
func NewSSR(opts SSROptions) *SSR {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recovery == nil {
		opts.Recovery = NewErrorRecovery(nil, nil, opts.Logger)
	}
	if opts.Next == nil {
		opts.Next = http.NotFoundHandler()
	}
	if opts.Adapter.Base == "" {
		opts.Adapter.Base = opts.Config.Base
	}
	opts.Adapter.Routes = routes.Prepare(opts.Adapter.Routes)
	return &SSR{opts: opts}
}

// ServeHTTP implements http.Handler.
func (s *SSR) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case adapter.IsLoaderRequest(r):
		s.serveLoader(w, r)
	case IsPageRequest(r):
		s.servePage(w, r)
	default:
		s.opts.Next.ServeHTTP(w, r)
	}
}

// IsPageRequest reports whether r navigates to a page rather than fetching
// a module or asset.
func IsPageRequest(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	p := r.URL.Path
	if strings.HasPrefix(p, "/@") || strings.HasPrefix(p, "/node_modules/") || strings.HasPrefix(p, "/__") {
		return false
	}
	ext := path.Ext(p)
	if ext == ".html" {
		return true
	}
	if ext != "" {
		return false
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

func (s *SSR) serveLoader(w http.ResponseWriter, r *http.Request) {
	ctx, span := metrics.StartSpan(r.Context(), metrics.SpanLoader,
		metrics.AttrPath.String(r.URL.Path),
		metrics.AttrRouteID.String(r.URL.Query().Get(adapter.DataParam)))

	actx := s.opts.Adapter
	a, err := adapter.New(&actx)
	if err != nil {
		metrics.EndSpan(span, err)
		s.opts.Recovery.Fail(w, r, errors.New("E700").WithPath(r.URL.Path).Wrap(err), nil)
		return
	}

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	a.HandleLoader(ww, r.WithContext(ctx))
	s.opts.Metrics.RecordLoader(ww.Status())
	metrics.EndSpan(span, nil)
}

func (s *SSR) servePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	canonical, err := routepath.Canonical(r.URL.EscapedPath())
	if err != nil {
		s.opts.Metrics.RecordDevRequest(http.StatusBadRequest, time.Since(start))
		s.opts.Recovery.WritePage(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if canonical != r.URL.EscapedPath() {
		target := canonical
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		s.opts.Metrics.RecordDevRequest(http.StatusMovedPermanently, time.Since(start))
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	pathname := routepath.StripBase(r.URL.Path, s.opts.Config.Base)
	if strings.HasSuffix(pathname, "/index.html") {
		pathname = strings.TrimSuffix(pathname, "index.html")
	}

	ctx, span := metrics.StartSpan(r.Context(), metrics.SpanDevRequest, metrics.AttrPath.String(pathname))
	page, err := s.render(ctx, r, pathname)
	metrics.EndSpan(span, err)

	status := http.StatusOK
	defer func() {
		s.opts.Metrics.RecordDevRequest(status, time.Since(start))
	}()

	if err != nil {
		var resp *adapter.ResponseError
		var nf *adapter.NotFoundError
		switch {
		case errors.As(err, &resp):
			status = resp.Response.Status
			if status == 0 {
				status = http.StatusOK
			}
			resp.Response.WriteTo(w)
		case errors.As(err, &nf):
			status = http.StatusNotFound
			s.opts.Recovery.WritePage(w, status, "Not Found", "No route matches "+pathname)
		default:
			status = http.StatusInternalServerError
			s.opts.Recovery.Fail(w, r, errors.New("E700").WithPath(pathname).Wrap(err), nil)
		}
		return
	}

	if s.opts.Recovery.reload != nil {
		s.opts.Recovery.reload.ClearError()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write([]byte(page))
	}
}

// render produces the page for pathname the way a build would, with
// stylesheets discovered from the dev module graph.
func (s *SSR) render(ctx context.Context, r *http.Request, pathname string) (string, error) {
	cfg := s.opts.Config

	src, err := os.ReadFile(cfg.TemplatePath())
	if err != nil {
		return "", err
	}
	template := string(src)
	if s.opts.Index != nil {
		template, err = s.opts.Index.TransformIndexHTML(ctx, r.URL.RequestURI(), template)
		if err != nil {
			return "", err
		}
	}

	actx := s.opts.Adapter
	a, err := adapter.New(&actx)
	if err != nil {
		return "", err
	}
	res, err := a.Render(ctx, pathname)
	if err != nil {
		return "", err
	}

	doc, err := html.Render(html.Options{
		Template:       template,
		ContainerID:    cfg.RootContainerID,
		AppHTML:        res.AppHTML,
		MetaAttributes: res.MetaAttributes,
		HTMLAttributes: res.HTMLAttributes,
		BodyAttributes: res.BodyAttributes,
	})
	if err != nil {
		return "", err
	}

	if s.opts.Graph != nil {
		entry := cfg.Entry
		if entry == "" {
			entry = html.DetectEntry(string(src))
		}
		entries := []string{devgraph.ModuleURL(entry)}
		for _, m := range res.RouterContext.Matches {
			if m.Route.Entry != "" {
				entries = append(entries, devgraph.ModuleURL(m.Route.Entry))
			}
			for _, c := range m.Route.Chunks {
				entries = append(entries, devgraph.ModuleURL(c))
			}
		}
		styles, err := devgraph.CollectCSS(ctx, s.opts.Graph, entries...)
		if err != nil {
			return "", err
		}
		links := make([]assets.Link, 0, len(styles))
		for _, href := range styles {
			links = append(links, assets.Link{Rel: "stylesheet", Href: href})
		}
		doc = html.InjectLinks(doc, links)
	}

	doc = html.PrependStyle(doc, res.StyleTag)
	if s.opts.Reload {
		doc = InjectClient(doc)
	}
	return doc, nil
}
