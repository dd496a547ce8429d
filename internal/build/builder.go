package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/assets"
	"github.com/vango-dev/ssg/pkg/critical"
	"github.com/vango-dev/ssg/pkg/html"
	"github.com/vango-dev/ssg/pkg/routes"
)

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Paths are the paths that were rendered, in enumeration order.
	Paths []string

	// Pages are the written pages, sorted by path.
	Pages []Page

	// Hash is the per-build random hash.
	Hash string

	// LoaderManifest is the path of the written loader data manifest.
	LoaderManifest string

	// Precache is the path of the precache manifest, if written.
	Precache string

	// Watchdog is the armed exit timer, nil when disabled.
	Watchdog *time.Timer
}

// Hooks are application callbacks around the build.
type Hooks struct {
	// OnBeforePageRender transforms the template before each page renders.
	OnBeforePageRender PageHook

	// OnPageRendered transforms each composed page.
	OnPageRendered PageHook

	// OnFinished runs after every file is written.
	OnFinished func(ctx context.Context, outDir string) error
}

// Options configures the builder.
type Options struct {
	// Adapter is copied for every page. Its Base defaults to the
	// configured base.
	Adapter adapter.Context

	// IncludedRoutes replaces the default filter over enumerated paths.
	IncludedRoutes routes.Filter

	Hooks Hooks

	// Critical overrides the configured critical CSS processor.
	Critical critical.Processor

	Metrics *metrics.Metrics

	// MetricsFile, when set, receives the metrics in textfile format.
	MetricsFile string

	Logger *slog.Logger

	// OnProgress is called with progress updates.
	OnProgress func(step string)

	// Exit is called by the watchdog. Default: os.Exit.
	Exit func(code int)
}

// Builder handles static builds.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Exit == nil {
		options.Exit = os.Exit
	}
	if options.Adapter.Base == "" {
		options.Adapter.Base = cfg.Base
	}
	if options.Critical == nil && cfg.Critical.Enabled {
		publicPath := cfg.Critical.PublicPath
		if publicPath == "" {
			publicPath = cfg.Base
		}
		options.Critical = critical.NewInliner(cfg.OutputPath(), publicPath, cfg.Critical.MaxInlineSize, cfg.Critical.Minify)
	}

	return &Builder{
		config:  cfg,
		options: options,
	}
}

// Build renders every page of the application into the output directory.
func (b *Builder) Build(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	cfg := b.config
	log := b.options.Logger
	outDir := cfg.OutputPath()

	ctx, span := metrics.StartSpan(ctx, metrics.SpanBuild)
	defer func() { metrics.EndSpan(span, err) }()

	b.progress("Reading bundler output...")
	template, err := os.ReadFile(cfg.BuiltTemplatePath())
	if err != nil {
		return nil, errors.New("E501").WithPath(cfg.BuiltTemplatePath()).Wrap(err)
	}
	manifest, err := readManifest(cfg.ManifestPath(), log)
	if err != nil {
		return nil, err
	}
	ssrManifest, err := readSSRManifest(cfg.SSRManifestPath(), log)
	if err != nil {
		return nil, err
	}
	var serverManifest assets.Manifest
	if cfg.ServerManifest != "" {
		serverManifest, err = readManifest(cfg.ServerManifestPath(), log)
		if err != nil {
			return nil, err
		}
	}

	entry := cfg.Entry
	if entry == "" {
		src, err := os.ReadFile(cfg.TemplatePath())
		if err != nil {
			src = template
		}
		entry = html.DetectEntry(string(src))
	}

	b.progress("Enumerating routes...")
	tree := routes.Prepare(b.options.Adapter.Routes)
	paths, err := b.paths(ctx, tree)
	if err != nil {
		return nil, err
	}

	hash, err := RandomHash(HashLength)
	if err != nil {
		return nil, errors.New("E600").Wrap(err)
	}

	actx := b.options.Adapter
	actx.Routes = tree
	factory := func(string) (adapter.Adapter, error) {
		c := actx
		return adapter.New(&c)
	}

	resolver := assets.NewResolver(manifest, ssrManifest, cfg.Base)
	var collector assets.Collector = &assets.EntryCollector{Resolver: resolver, Roots: []string{entry}}
	if actx.Kind == adapter.KindRemix {
		collector = &assets.DiscoveryCollector{
			EntryCollector: assets.EntryCollector{Resolver: resolver, Roots: []string{entry}},
			Server:         serverManifest,
		}
	}

	b.progress("Rendering pages...")
	log.Info("Rendering Pages...", "count", len(paths))
	run, err := Run(ctx, paths, factory, html.RewriteScripts(string(template), cfg.Script), RunOptions{
		OutDir:             outDir,
		ContainerID:        cfg.RootContainerID,
		DirStyle:           cfg.DirStyle,
		Concurrency:        cfg.Concurrency,
		Hash:               hash,
		Collector:          collector,
		Critical:           b.options.Critical,
		Prettify:           cfg.Formatting == "prettify",
		OnBeforePageRender: b.options.Hooks.OnBeforePageRender,
		OnPageRendered:     b.options.Hooks.OnPageRendered,
		Kind:               string(actx.Kind),
		Metrics:            b.options.Metrics,
		Logger:             log,
	})
	if err != nil {
		// Pages written before the failure may have replaced the template.
		os.WriteFile(cfg.BuiltTemplatePath(), template, 0644)
		return nil, err
	}
	removeTemplate(outDir, cfg.BuiltTemplatePath(), run.Pages)

	b.progress("Writing loader data manifest...")
	manifestPath, err := run.LoaderData.WriteFile(outDir, hash)
	if err != nil {
		return nil, errors.New("E600").WithPath(manifestPath).Wrap(err)
	}
	log.Info("Wrote loader data manifest", "file", manifestPath)

	result = &Result{
		Paths:          paths,
		Pages:          run.Pages,
		Hash:           hash,
		LoaderManifest: manifestPath,
	}

	if cfg.Precache {
		b.progress("Writing precache manifest...")
		p, err := WritePrecache(outDir)
		if err != nil {
			return nil, errors.New("E600").WithPath(p).Wrap(err)
		}
		result.Precache = p
	}

	os.RemoveAll(cfg.TempPath())

	if fn := b.options.Hooks.OnFinished; fn != nil {
		log.Info("Running onFinished hook")
		if err := fn(ctx, outDir); err != nil {
			return nil, errors.New("E300").WithDetail("onFinished hook failed").Wrap(err)
		}
	}

	result.Duration = time.Since(start)
	b.options.Metrics.RecordBuild(len(run.Pages), result.Duration)
	if b.options.MetricsFile != "" {
		if err := b.options.Metrics.WriteTextfile(b.options.MetricsFile); err != nil {
			log.Warn("Failed to write metrics file", "file", b.options.MetricsFile, "error", err)
		}
	}
	log.Info("Build finished.", "pages", len(run.Pages), "duration", result.Duration.Round(time.Millisecond))

	grace, err := cfg.WatchdogDuration()
	if err != nil {
		return nil, errors.New("E101").WithDetail("watchdog: " + err.Error())
	}
	result.Watchdog = Watchdog(grace, log, b.options.Exit)

	return result, nil
}

// paths enumerates the tree and applies the route filter.
func (b *Builder) paths(ctx context.Context, tree []*routes.Route) ([]string, error) {
	paths, err := routes.Enumerate(ctx, tree)
	if err != nil {
		var spe *routes.StaticPathsError
		if errors.As(err, &spe) {
			return nil, errors.New("E200").WithPath(spe.Pattern).Wrap(err)
		}
		return nil, errors.New("E201").Wrap(err)
	}

	filter := b.options.IncludedRoutes
	if filter == nil && !b.config.IncludeAllRoutes {
		filter = routes.DefaultFilter
	}
	if filter != nil {
		paths, err = filter(ctx, paths, tree)
		if err != nil {
			return nil, errors.New("E202").Wrap(err)
		}
	}
	return routes.Dedupe(paths), nil
}

// Paths returns the paths a build would render.
func (b *Builder) Paths(ctx context.Context) ([]string, error) {
	return b.paths(ctx, routes.Prepare(b.options.Adapter.Routes))
}

func readManifest(path string, log *slog.Logger) (assets.Manifest, error) {
	m, err := assets.LoadManifest(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("Manifest not found, skipping preload links", "file", path)
			return assets.Manifest{}, nil
		}
		return nil, errors.New("E500").WithPath(path).Wrap(err)
	}
	return m, nil
}

func readSSRManifest(path string, log *slog.Logger) (assets.SSRManifest, error) {
	m, err := assets.LoadSSRManifest(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("SSR manifest not found, skipping preload links", "file", path)
			return assets.SSRManifest{}, nil
		}
		return nil, errors.New("E500").WithPath(path).Wrap(err)
	}
	return m, nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}

// removeTemplate deletes the built template unless a page was written over it.
func removeTemplate(outDir, templatePath string, pages []Page) {
	rel, err := filepath.Rel(outDir, templatePath)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	for _, p := range pages {
		if p.File == rel {
			return
		}
	}
	os.Remove(templatePath)
}
