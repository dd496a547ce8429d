package dev

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/devgraph"
	"github.com/vango-dev/ssg/pkg/routepath"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Adapter renders pages. Its Base defaults to the configured base.
	Adapter adapter.Context

	// Graph, Index and Fixer default to a bridge client for
	// Config.Dev.Bundler when it is set.
	Graph devgraph.Graph
	Index devgraph.IndexTransformer
	Fixer devgraph.StackFixer

	// Metrics, when set, is served at /metrics.
	Metrics *metrics.Metrics

	Logger *slog.Logger

	// OnReload is called when browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development server.
type Server struct {
	config       *config.Config
	options      ServerOptions
	bundler      *Bundler
	watcher      *Watcher
	reloadServer *ReloadServer
	recovery     *ErrorRecovery
	proxy        *httputil.ReverseProxy
	changeCh     chan []Change
	httpServer   *http.Server
	log          *slog.Logger
	mu           sync.Mutex
	running      bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	log := options.Logger
	if log == nil {
		log = slog.Default()
		options.Logger = log
	}

	var proxy *httputil.ReverseProxy
	if cfg.Dev.Bundler != "" {
		client := devgraph.NewClient(cfg.Dev.Bundler)
		if options.Graph == nil {
			options.Graph = client
		}
		if options.Index == nil {
			options.Index = client
		}
		if options.Fixer == nil {
			options.Fixer = client
		}
		if target, err := url.Parse(cfg.Dev.Bundler); err == nil {
			proxy = httputil.NewSingleHostReverseProxy(target)
		} else {
			log.Warn("Invalid bundler URL, modules will not be proxied", "url", cfg.Dev.Bundler, "error", err)
		}
	}

	var reloadServer *ReloadServer
	if cfg.Dev.HotReload {
		reloadServer = NewReloadServer()
	}

	s := &Server{
		config:  cfg,
		options: options,
		bundler: NewBundler(BundlerConfig{
			Command: cfg.Dev.Command,
			Dir:     cfg.RootPath(),
		}),
		watcher: NewWatcher(WatcherConfig{
			Paths:    CollectWatchPaths(cfg),
			Ignore:   DefaultIgnore,
			Interval: 100 * time.Millisecond,
		}),
		reloadServer: reloadServer,
		recovery:     NewErrorRecovery(options.Fixer, reloadServer, log),
		proxy:        proxy,
		log:          log,
	}
	if proxy != nil {
		proxy.ErrorHandler = s.bundlerDown
	}
	return s
}

// Handler returns the dev request pipeline.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recovery.Middleware)

	if s.reloadEnabled() {
		r.Get(ReloadPath, s.reloadServer.HandleWebSocket)
	}
	if s.options.Metrics != nil {
		r.Handle("/metrics", s.options.Metrics.Handler())
	}

	ssr := NewSSR(SSROptions{
		Config:   s.config,
		Adapter:  s.options.Adapter,
		Graph:    s.options.Graph,
		Index:    s.options.Index,
		Recovery: s.recovery,
		Reload:   s.reloadEnabled(),
		Metrics:  s.options.Metrics,
		Logger:   s.log,
		Next:     http.HandlerFunc(s.serveAsset),
	})
	r.Handle("/*", s.baseGuard(ssr))
	return r
}

// Start starts the development server and blocks until ctx is done or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if len(s.config.Dev.Command) > 0 {
		s.log.Info("Starting bundler", "command", strings.Join(s.config.Dev.Command, " "))
		if err := s.bundler.Start(ctx); err != nil {
			s.log.Error("Failed to start bundler", "error", err)
		} else {
			go func() {
				err := s.bundler.Wait()
				s.mu.Lock()
				running := s.running
				s.mu.Unlock()
				if err != nil && running && ctx.Err() == nil {
					s.log.Warn("Bundler exited", "error", err)
				}
			}()
		}
	}

	s.changeCh = make(chan []Change, 16)
	s.watcher.OnChange(func(changes []Change) {
		select {
		case s.changeCh <- changes:
		default:
		}
	})
	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:              s.config.DevAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Server running", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.bundler.Stop()
	if s.reloadServer != nil {
		s.reloadServer.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-s.changeCh:
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next...)
				default:
					draining = false
				}
			}
			s.handleChanges(changes)
		}
	}
}

// handleChanges reloads stylesheets in place when only CSS changed and
// reloads the page otherwise.
func (s *Server) handleChanges(changes []Change) {
	if len(changes) == 0 {
		return
	}

	cssOnly := true
	var cssPath string
	for _, change := range changes {
		s.log.Info("Changed", "file", change.Path, "type", change.Type, "op", change.Op)
		if change.Type != ChangeCSS {
			cssOnly = false
		} else if cssPath == "" {
			cssPath = change.Path
		}
	}

	if !s.reloadEnabled() {
		s.log.Debug("Hot reload disabled, not notifying browsers")
		return
	}
	if cssOnly {
		s.reloadServer.NotifyCSS(cssPath)
		s.log.Info("CSS reloaded")
		return
	}
	s.notifyReload()
}

// baseGuard redirects the bare root to the base and rejects paths outside
// it with a hint.
func (s *Server) baseGuard(next http.Handler) http.Handler {
	base := routepath.WithTrailingSlash(routepath.WithLeadingSlash(s.config.Base))
	if base == "/" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		switch {
		case strings.HasPrefix(p, base) || p+"/" == base:
			next.ServeHTTP(w, r)
		case p == "/" || p == "/index.html":
			http.Redirect(w, r, base, http.StatusFound)
		case !IsPageRequest(r):
			next.ServeHTTP(w, r)
		default:
			hint := routepath.JoinSegments(base, p)
			s.recovery.WritePage(w, http.StatusNotFound, "Not Found",
				fmt.Sprintf("The server is configured with a public base URL of %s. Did you mean to visit %s instead?", base, hint))
		}
	})
}

// serveAsset serves files from the public directory, then proxies to the
// bundler.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel := routepath.StripBase(r.URL.Path, s.config.Base)
	file := filepath.Join(s.config.PublicPath(), filepath.FromSlash(filepath.Clean("/"+rel)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		http.ServeFile(w, r, file)
		return
	}
	if s.proxy != nil {
		s.proxy.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) bundlerDown(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Warn("Bundler unreachable", "path", r.URL.Path, "error", err)
	s.recovery.WritePage(w, http.StatusBadGateway, "Bundler Not Running",
		"The bundler dev server at "+s.config.Dev.Bundler+" is not responding. Start it, or set dev.command so it is started for you. The page will reload when it is ready.")
}

func (s *Server) reloadEnabled() bool {
	return s.config.Dev.HotReload && s.reloadServer != nil
}

func (s *Server) notifyReload() {
	s.reloadServer.NotifyReload()
	if s.options.OnReload != nil {
		s.options.OnReload(s.reloadServer.ClientCount())
	}
	s.log.Info("Reloaded browsers", "clients", s.reloadServer.ClientCount())
}
