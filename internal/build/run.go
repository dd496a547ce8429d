package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/assets"
	"github.com/vango-dev/ssg/pkg/critical"
	"github.com/vango-dev/ssg/pkg/html"
	"github.com/vango-dev/ssg/pkg/loaderdata"
	"github.com/vango-dev/ssg/pkg/scheduler"
)

// AdapterFactory creates a fresh adapter for one page.
type AdapterFactory func(path string) (adapter.Adapter, error)

// PageHook transforms a document for a path. Returning "" keeps the input.
type PageHook func(ctx context.Context, path, doc string) (string, error)

// RunOptions configures Run.
type RunOptions struct {
	// OutDir receives the page files.
	OutDir string

	// ContainerID is the id of the element the app mounts into.
	ContainerID string

	// DirStyle is html.DirStyleFlat or html.DirStyleNested.
	DirStyle string

	// Concurrency is the width of the render class. Ignored when
	// Scheduler is set.
	Concurrency int

	// Scheduler runs renders in scheduler.ClassRender and critical CSS in
	// scheduler.ClassCritical. Default: render width Concurrency, critical 1.
	Scheduler *scheduler.Scheduler

	// Hash is published to the client through the hydration hint script.
	Hash string

	// Collector resolves the asset files to preload for a page.
	Collector assets.Collector

	// Critical post-processes each composed page.
	Critical critical.Processor

	// Prettify formats the final markup.
	Prettify bool

	// OnBeforePageRender transforms the template before a page renders.
	OnBeforePageRender PageHook

	// OnPageRendered transforms the composed page before post-processing.
	OnPageRendered PageHook

	// Kind labels metrics.
	Kind string

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Page is one written page.
type Page struct {
	Path string
	// File is relative to OutDir, slash separated.
	File string
	Size int
}

// RunResult is the outcome of Run.
type RunResult struct {
	// Pages are sorted by path.
	Pages      []Page
	LoaderData *loaderdata.Manifest
}

func (o *RunOptions) defaults() {
	if o.ContainerID == "" {
		o.ContainerID = "root"
	}
	if o.DirStyle == "" {
		o.DirStyle = html.DirStyleFlat
	}
	if o.Concurrency < 1 {
		o.Concurrency = 20
	}
	if o.Scheduler == nil {
		o.Scheduler = scheduler.New(map[string]int{
			scheduler.ClassRender:   o.Concurrency,
			scheduler.ClassCritical: 1,
		})
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Run renders every path with a fresh adapter from factory, composes each
// page from template and writes it under OutDir. The first failure cancels
// renders that have not started and is returned once running renders
// finish.
func Run(ctx context.Context, paths []string, factory AdapterFactory, template string, opts RunOptions) (*RunResult, error) {
	opts.defaults()

	manifest := loaderdata.New()
	var mu sync.Mutex
	pages := make([]Page, 0, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		g.Go(func() error {
			return opts.Scheduler.Do(gctx, scheduler.ClassRender, func(ctx context.Context) error {
				page, err := renderPage(ctx, p, factory, template, manifest, &opts)
				if err != nil {
					return err
				}
				mu.Lock()
				pages = append(pages, page)
				mu.Unlock()
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return &RunResult{Pages: pages, LoaderData: manifest}, nil
}

func renderPage(ctx context.Context, path string, factory AdapterFactory, template string, manifest *loaderdata.Manifest, opts *RunOptions) (page Page, err error) {
	ctx, span := metrics.StartSpan(ctx, metrics.SpanRenderPage, metrics.AttrPath.String(path), metrics.AttrKind.String(opts.Kind))
	start := time.Now()
	defer func() {
		opts.Metrics.RecordPage(opts.Kind, time.Since(start), err)
		metrics.EndSpan(span, err)
	}()

	indexHTML, err := applyHook(ctx, opts.OnBeforePageRender, path, template)
	if err != nil {
		return Page{}, errors.New("E300").WithPath(path).Wrap(err)
	}

	a, err := factory(path)
	if err != nil {
		return Page{}, errors.New("E300").WithPath(path).Wrap(err)
	}
	res, err := a.Render(ctx, path)
	if err != nil {
		return Page{}, renderError(path, err)
	}
	manifest.RecordAll(path, res.RouterContext.LoaderData)

	doc, err := html.Render(html.Options{
		Template:       indexHTML,
		ContainerID:    opts.ContainerID,
		AppHTML:        res.AppHTML,
		MetaAttributes: res.MetaAttributes,
		HTMLAttributes: res.HTMLAttributes,
		BodyAttributes: res.BodyAttributes,
		Hash:           opts.Hash,
	})
	if err != nil {
		return Page{}, errors.New("E400").WithPath(path).Wrap(err)
	}

	if opts.Collector != nil {
		files := opts.Collector.Collect(ctx, res.RouterContext.Matches)
		doc = html.InjectLinks(doc, assets.PreloadLinks(files))
	}

	doc, err = applyHook(ctx, opts.OnPageRendered, path, doc)
	if err != nil {
		return Page{}, errors.New("E401").WithPath(path).Wrap(err)
	}

	if opts.Critical != nil {
		err = opts.Scheduler.Do(ctx, scheduler.ClassCritical, func(ctx context.Context) error {
			cctx, cspan := metrics.StartSpan(ctx, metrics.SpanCritical, metrics.AttrPath.String(path))
			cstart := time.Now()
			out, err := opts.Critical.Process(cctx, doc)
			opts.Metrics.RecordCritical(time.Since(cstart))
			metrics.EndSpan(cspan, err)
			if err != nil {
				return err
			}
			doc = html.AddCrossorigin(out)
			return nil
		})
		if err != nil {
			return Page{}, errors.New("E401").WithPath(path).Wrap(err)
		}
	}

	doc = html.PrependStyle(doc, res.StyleTag)
	if opts.Prettify {
		doc = html.Format(doc)
	}

	file := html.Filename(path, opts.DirStyle)
	if err := writeFile(filepath.Join(opts.OutDir, filepath.FromSlash(file)), doc); err != nil {
		return Page{}, errors.New("E600").WithPath(file).Wrap(err)
	}
	opts.Logger.Info(fmt.Sprintf("%s  %.2f KiB", filepath.ToSlash(filepath.Join(filepath.Base(opts.OutDir), file)), float64(len(doc))/1024))

	return Page{Path: path, File: file, Size: len(doc)}, nil
}

func applyHook(ctx context.Context, hook PageHook, path, doc string) (string, error) {
	if hook == nil {
		return doc, nil
	}
	out, err := hook(ctx, path, doc)
	if err != nil {
		return "", err
	}
	if out == "" {
		return doc, nil
	}
	return out, nil
}

// renderError lifts adapter failures into coded errors.
func renderError(path string, err error) error {
	var resp *adapter.ResponseError
	var nf *adapter.NotFoundError
	switch {
	case errors.As(err, &resp):
		return errors.New("E301").WithPath(path).Wrap(err)
	case errors.As(err, &nf):
		return errors.New("E302").WithPath(path).Wrap(err)
	}
	return errors.New("E300").WithPath(path).Wrap(err)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
