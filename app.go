package ssg

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/vango-dev/ssg/internal/build"
	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/dev"
	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/internal/publish"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/critical"
	"github.com/vango-dev/ssg/pkg/render"
)

// App is an application to pre-render.
type App struct {
	// Kind selects the router flavour. Default: KindRemix.
	Kind Kind

	// Routes is the route tree. Unused by KindSinglePage.
	Routes []*Route

	// Shell wraps every rendered page, for providers and global layout.
	// For KindSinglePage it renders the whole application and receives nil.
	Shell func(page *VNode) *VNode

	// StyleCollector creates a per-page CSS-in-JS style sheet.
	StyleCollector func() render.StyleCollector

	// IncludedRoutes replaces the default path filter.
	IncludedRoutes Filter

	// OnBeforePageRender transforms the template before each page renders.
	OnBeforePageRender PageHook

	// OnPageRendered transforms each composed page.
	OnPageRendered PageHook

	// OnAppRendered receives the app markup of every rendered page.
	OnAppRendered []func(path, appHTML string)

	// OnFinished runs after the build has written every file.
	OnFinished func(ctx context.Context, outDir string) error

	// Critical overrides the configured critical CSS processor.
	Critical critical.Processor
}

// Option configures Build, Dev and Publish.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	metricsFile string
	progress    func(string)
	report      io.Writer
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records build and dev metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMetricsFile writes build metrics to path in textfile format.
func WithMetricsFile(path string) Option {
	return func(o *options) { o.metricsFile = path }
}

// WithProgress reports build steps.
func WithProgress(fn func(step string)) Option {
	return func(o *options) { o.progress = fn }
}

// WithReport prints a build summary to w.
func WithReport(w io.Writer) Option {
	return func(o *options) { o.report = w }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metricsFile != "" && o.metrics == nil {
		o.metrics = metrics.New()
	}
	return o
}

// adapterContext returns the render context for cfg.
func (a *App) adapterContext(cfg *config.Config) adapter.Context {
	kind := a.Kind
	if kind == "" {
		kind = KindRemix
	}
	return adapter.Context{
		Kind:           kind,
		Base:           cfg.Base,
		Routes:         a.Routes,
		App:            a.Shell,
		StyleCollector: a.StyleCollector,
		OnAppRendered:  a.OnAppRendered,
	}
}

// Build renders every static path of the app into cfg's output directory.
func (a *App) Build(ctx context.Context, cfg *Config, opts ...Option) (*BuildResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	builder := build.New(cfg, build.Options{
		Adapter:        a.adapterContext(cfg),
		IncludedRoutes: a.IncludedRoutes,
		Hooks: build.Hooks{
			OnBeforePageRender: a.OnBeforePageRender,
			OnPageRendered:     a.OnPageRendered,
			OnFinished:         a.OnFinished,
		},
		Critical:    a.Critical,
		Metrics:     o.metrics,
		MetricsFile: o.metricsFile,
		Logger:      o.logger,
		OnProgress:  o.progress,
	})

	result, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	if o.report != nil {
		build.Report(o.report, result)
	}
	return result, nil
}

// Paths returns the paths a build would render, without rendering.
func (a *App) Paths(ctx context.Context, cfg *Config) ([]string, error) {
	return build.New(cfg, build.Options{
		Adapter:        a.adapterContext(cfg),
		IncludedRoutes: a.IncludedRoutes,
	}).Paths(ctx)
}

// Dev runs the development server until ctx is done.
func (a *App) Dev(ctx context.Context, cfg *Config, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	o := newOptions(opts)

	srv := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Adapter: a.adapterContext(cfg),
		Metrics: o.metrics,
		Logger:  o.logger,
		OnReload: func(clients int) {
			o.logger.Debug("Browsers reloaded", "clients", clients)
		},
	})
	return srv.Start(ctx)
}

// Publish uploads cfg's output directory to the configured S3 bucket.
func (a *App) Publish(ctx context.Context, cfg *Config, opts ...Option) (PublishResult, error) {
	o := newOptions(opts)
	s3cfg := cfg.Publish.S3
	if s3cfg.Bucket == "" {
		return PublishResult{}, errors.New("E800").WithDetail("publish.s3.bucket is not set")
	}

	client, err := publish.NewS3Client(s3cfg)
	if err != nil {
		return PublishResult{}, errors.New("E800").Wrap(err)
	}
	p := publish.New(client, s3cfg.Bucket, s3cfg.Prefix)
	p.Concurrency = cfg.Concurrency
	p.Logger = o.logger

	dir := cfg.OutputPath()
	if _, err := os.Stat(dir); err != nil {
		return PublishResult{}, errors.New("E800").WithPath(dir).Wrap(err)
	}
	return p.Publish(ctx, dir)
}
