package build

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/loaderdata"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

const testTemplate = `<!DOCTYPE html>
<html>
<head>
<title>App</title>
<script type="module" crossorigin src="/assets/main-a1b2c3d4.js"></script>
</head>
<body>
<div id="root"></div>
</body>
</html>`

const testManifest = `{
  "src/main.ts": {
    "file": "assets/main-a1b2c3d4.js",
    "src": "src/main.ts",
    "isEntry": true,
    "css": ["assets/main-e5f6a7b8.css"]
  }
}`

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupProject writes a bundler output directory and returns its config.
func setupProject(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.New()
	cfg.Root = root

	out := cfg.OutputPath()
	if err := os.MkdirAll(filepath.Join(out, ".vite"), 0755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, cfg.TemplatePath(), strings.Replace(testTemplate, "/assets/main-a1b2c3d4.js", "/src/main.ts", 1))
	mustWrite(t, cfg.BuiltTemplatePath(), testTemplate)
	mustWrite(t, cfg.ManifestPath(), testManifest)
	mustWrite(t, filepath.Join(out, "assets", "main-a1b2c3d4.js"), "console.log(1)")
	mustWrite(t, filepath.Join(out, "assets", "main-e5f6a7b8.css"), "body{margin:0}")
	if err := os.MkdirAll(cfg.TempPath(), 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func testRoutes(failing bool) []*routes.Route {
	return []*routes.Route{
		{Index: true, Component: func(routes.Props) *vdom.VNode {
			return vdom.H1(vdom.Text("Home"))
		}},
		{
			Path: "a",
			Loader: func(context.Context, routes.LoaderArgs) (any, error) {
				if failing {
					return nil, fmt.Errorf("db down")
				}
				return map[string]any{"title": "About"}, nil
			},
			Component: func(p routes.Props) *vdom.VNode {
				return vdom.P(vdom.Text(p.LoaderData.(map[string]any)["title"].(string)))
			},
		},
		{Path: "posts/:id", Component: func(routes.Props) *vdom.VNode {
			return vdom.P(vdom.Text("post"))
		}},
	}
}

func testOptions(tree []*routes.Route) Options {
	return Options{
		Adapter: adapter.Context{Kind: adapter.KindRemix, Routes: tree},
		Logger:  discardLogger,
		Exit:    func(int) {},
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		dirStyle string
		files    map[string]string
	}{
		{config.DirStyleFlat, map[string]string{"index.html": "Home", "a.html": "About"}},
		{config.DirStyleNested, map[string]string{"index.html": "Home", "a/index.html": "About"}},
	}

	for _, tt := range tests {
		t.Run(tt.dirStyle, func(t *testing.T) {
			cfg := setupProject(t)
			cfg.DirStyle = tt.dirStyle
			cfg.Watchdog = "0"

			result, err := New(cfg, testOptions(testRoutes(false))).Build(context.Background())
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if len(result.Pages) != 2 {
				t.Fatalf("Pages = %v, want 2", result.Pages)
			}
			if result.Watchdog != nil {
				t.Error("Watchdog should be disabled")
			}

			for file, text := range tt.files {
				doc := readFile(t, filepath.Join(cfg.OutputPath(), filepath.FromSlash(file)))
				for _, want := range []string{
					text,
					`data-server-rendered="true"`,
					"window.__SSG_HASH__ = '" + result.Hash + "'",
					`href="/assets/main-e5f6a7b8.css"`,
				} {
					if !strings.Contains(doc, want) {
						t.Errorf("%s missing %q:\n%s", file, want, doc)
					}
				}
			}

			if _, err := os.Stat(cfg.TempPath()); !os.IsNotExist(err) {
				t.Error("temp directory should be removed")
			}
		})
	}
}

func TestBuildLoaderManifest(t *testing.T) {
	cfg := setupProject(t)
	cfg.Watchdog = "0"

	result, err := New(cfg, testOptions(testRoutes(false))).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := filepath.Join(cfg.OutputPath(), loaderdata.FileName(result.Hash))
	if result.LoaderManifest != want {
		t.Errorf("LoaderManifest = %q, want %q", result.LoaderManifest, want)
	}
	m, err := loaderdata.Parse([]byte(readFile(t, want)))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Paths(); strings.Join(got, ",") != "/,/a" {
		t.Errorf("Paths() = %v, want [/ /a]", got)
	}
	data, _ := m.Get("/a")
	if title := data["1"].(map[string]any)["title"]; title != "About" {
		t.Errorf("loader data for /a = %v", data)
	}
}

func TestBuildFailure(t *testing.T) {
	cfg := setupProject(t)
	cfg.Watchdog = "0"

	var finished atomic.Bool
	opts := testOptions(testRoutes(true))
	opts.Hooks.OnFinished = func(context.Context, string) error {
		finished.Store(true)
		return nil
	}

	_, err := New(cfg, opts).Build(context.Background())
	if err == nil {
		t.Fatal("Build() should fail")
	}
	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %T is not *errors.Error", err)
	}
	if e.Code != "E300" || e.Path != "/a" {
		t.Errorf("error = %s at %q, want E300 at /a", e.Code, e.Path)
	}
	if !strings.Contains(err.Error(), "db down") {
		t.Errorf("error should carry the cause: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(cfg.OutputPath(), loaderdata.FilePrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("loader manifest written after failure: %v", matches)
	}
	if finished.Load() {
		t.Error("OnFinished ran after failure")
	}
	if got := readFile(t, cfg.BuiltTemplatePath()); got != testTemplate {
		t.Errorf("built template not kept after failure:\n%s", got)
	}

	// A rerun needs no fresh bundler output.
	if _, err := New(cfg, testOptions(testRoutes(false))).Build(context.Background()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
}

func TestBuildRemovesTemplate(t *testing.T) {
	cfg := setupProject(t)
	cfg.Watchdog = "0"
	cfg.HTMLEntry = "app.html"
	mustWrite(t, cfg.TemplatePath(), testTemplate)
	mustWrite(t, cfg.BuiltTemplatePath(), testTemplate)

	if _, err := New(cfg, testOptions(testRoutes(false))).Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.BuiltTemplatePath()); !os.IsNotExist(err) {
		t.Errorf("built template still present: %v", err)
	}
	if !strings.Contains(readFile(t, filepath.Join(cfg.OutputPath(), "index.html")), "Home") {
		t.Error("home page not written")
	}
}

func TestBuildHooks(t *testing.T) {
	cfg := setupProject(t)
	cfg.Watchdog = "0"
	cfg.Script = config.ScriptDefer

	var finishedDir string
	opts := testOptions(testRoutes(false))
	opts.Hooks = Hooks{
		OnBeforePageRender: func(_ context.Context, path, doc string) (string, error) {
			return strings.Replace(doc, "<title>App</title>", "<title>App "+path+"</title>", 1), nil
		},
		OnPageRendered: func(context.Context, string, string) (string, error) {
			return "", nil
		},
		OnFinished: func(_ context.Context, outDir string) error {
			finishedDir = outDir
			return nil
		},
	}

	if _, err := New(cfg, opts).Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	doc := readFile(t, filepath.Join(cfg.OutputPath(), "a.html"))
	if !strings.Contains(doc, "<title>App /a</title>") {
		t.Errorf("OnBeforePageRender not applied:\n%s", doc)
	}
	if !strings.Contains(doc, `<script type="module" defer crossorigin`) {
		t.Errorf("script mode not applied:\n%s", doc)
	}
	if finishedDir != cfg.OutputPath() {
		t.Errorf("OnFinished dir = %q, want %q", finishedDir, cfg.OutputPath())
	}
}

func TestBuildPaths(t *testing.T) {
	tests := []struct {
		name       string
		includeAll bool
		filter     routes.Filter
		want       string
	}{
		{"default filter", false, nil, "/,/a"},
		{"include all", true, nil, "/,/a,/posts/:id"},
		{"custom filter", false, func(_ context.Context, paths []string, _ []*routes.Route) ([]string, error) {
			return append(paths, "/a", "/extra"), nil
		}, "/,/a,/posts/:id,/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.IncludeAllRoutes = tt.includeAll
			opts := testOptions(testRoutes(false))
			opts.IncludedRoutes = tt.filter

			paths, err := New(cfg, opts).Paths(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Join(paths, ","); got != tt.want {
				t.Errorf("Paths() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildStaticPathsError(t *testing.T) {
	cfg := config.New()
	tree := []*routes.Route{{
		Path: "posts/:id",
		GetStaticPaths: func(context.Context) ([]string, error) {
			return nil, fmt.Errorf("cms offline")
		},
	}}

	_, err := New(cfg, testOptions(tree)).Paths(context.Background())
	var e *errors.Error
	if !errors.As(err, &e) || e.Code != "E200" {
		t.Fatalf("error = %v, want E200", err)
	}
}

func TestBuildPrecacheAndMetrics(t *testing.T) {
	cfg := setupProject(t)
	cfg.Watchdog = "0"
	cfg.Precache = true

	opts := testOptions(testRoutes(false))
	opts.Metrics = metrics.New()
	opts.MetricsFile = filepath.Join(t.TempDir(), "ssg.prom")

	result, err := New(cfg, opts).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var entries []PrecacheEntry
	if err := json.Unmarshal([]byte(readFile(t, result.Precache)), &entries); err != nil {
		t.Fatal(err)
	}
	urls := make(map[string]string)
	for _, e := range entries {
		urls[e.URL] = e.Revision
	}
	for _, want := range []string{"index.html", "a.html", "assets/main-e5f6a7b8.css", loaderdata.FileName(result.Hash)} {
		if len(urls[want]) != 64 {
			t.Errorf("precache entry %q missing or bad revision: %v", want, urls)
		}
	}
	if _, ok := urls[".vite/manifest.json"]; ok {
		t.Error("hidden directories should not be precached")
	}

	prom := readFile(t, opts.MetricsFile)
	if !strings.Contains(prom, `ssg_pages_rendered_total{kind="remix",status="success"} 2`) {
		t.Errorf("metrics file missing page counter:\n%s", prom)
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	cfg := config.New()
	cfg.Root = t.TempDir()

	_, err := New(cfg, testOptions(testRoutes(false))).Build(context.Background())
	var e *errors.Error
	if !errors.As(err, &e) || e.Code != "E501" {
		t.Fatalf("error = %v, want E501", err)
	}
}

func TestRandomHash(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{10}$`)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		h, err := RandomHash(HashLength)
		if err != nil {
			t.Fatal(err)
		}
		if !re.MatchString(h) {
			t.Errorf("RandomHash() = %q", h)
		}
		seen[h] = true
	}
	if len(seen) < 2 {
		t.Error("RandomHash() should not repeat")
	}
}

func TestWatchdog(t *testing.T) {
	exited := make(chan int, 1)
	timer := Watchdog(10*time.Millisecond, discardLogger, func(code int) { exited <- code })
	if timer == nil {
		t.Fatal("Watchdog() returned nil")
	}

	select {
	case code := <-exited:
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(time.Second):
		t.Fatal("watchdog did not fire")
	}

	if Watchdog(0, discardLogger, func(int) { t.Error("disabled watchdog fired") }) != nil {
		t.Error("zero grace should disable the watchdog")
	}
}

func TestWatchdogStopped(t *testing.T) {
	var fired atomic.Bool
	timer := Watchdog(20*time.Millisecond, discardLogger, func(int) { fired.Store(true) })
	timer.Stop()
	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Error("stopped watchdog fired")
	}
}

func TestReport(t *testing.T) {
	var b strings.Builder
	Report(&b, &Result{
		Duration:       1500 * time.Millisecond,
		Pages:          []Page{{Path: "/", File: "index.html", Size: 2048}},
		Hash:           "abc123def4",
		LoaderManifest: "dist/static-loader-data-manifest-abc123def4.json",
	})
	out := b.String()
	for _, want := range []string{"1 pages rendered", "index.html", "2.00 KiB", "abc123def4"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q:\n%s", want, out)
		}
	}
}
