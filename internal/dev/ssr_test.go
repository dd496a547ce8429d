package dev

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/metrics"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/devgraph"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

const devTemplate = `<!DOCTYPE html>
<html>
<head><title>Dev</title></head>
<body>
<div id="root"></div>
<script type="module" src="/src/main.ts"></script>
</body>
</html>`

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type upperFixer struct{}

func (upperFixer) FixStack(stack string) string { return "FIXED " + stack }

type markingIndex struct{}

func (markingIndex) TransformIndexHTML(_ context.Context, url, doc string) (string, error) {
	return strings.Replace(doc, "<title>Dev</title>", "<title>Dev</title><!-- transformed "+url+" -->", 1), nil
}

func devRoutes() []*routes.Route {
	return []*routes.Route{
		{Index: true, Entry: "src/pages/home.tsx", Component: func(routes.Props) *vdom.VNode {
			return vdom.H1(vdom.Text("Home"))
		}},
		{
			Path: "posts/:id",
			Loader: func(_ context.Context, args routes.LoaderArgs) (any, error) {
				return map[string]any{"id": args.Params["id"]}, nil
			},
			Component: func(p routes.Props) *vdom.VNode {
				return vdom.P(vdom.Text("post " + p.LoaderData.(map[string]any)["id"].(string)))
			},
		},
		{Path: "old", Loader: func(context.Context, routes.LoaderArgs) (any, error) {
			return routes.Redirect("/new", http.StatusFound), nil
		}},
		{Path: "broken", Component: func(routes.Props) *vdom.VNode {
			panic("component exploded")
		}},
	}
}

var devGraph = devgraph.Static{
	"/src/main.ts":               {"/src/index.css", "/src/app.tsx"},
	"/src/app.tsx":               {"/src/app.css"},
	"/src/pages/home.tsx":        {"/src/pages/home.module.css"},
	"/src/index.css":             nil,
	"/src/app.css":               nil,
	"/src/pages/home.module.css": nil,
}

func devProject(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Root = t.TempDir()
	if err := os.WriteFile(cfg.TemplatePath(), []byte(devTemplate), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.PublicPath(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.PublicPath(), "robots.txt"), []byte("User-agent: *"), 0644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, m *metrics.Metrics) http.Handler {
	t.Helper()
	return NewServer(ServerOptions{
		Config:  cfg,
		Adapter: adapter.Context{Kind: adapter.KindRemix, Routes: devRoutes()},
		Graph:   devGraph,
		Index:   markingIndex{},
		Fixer:   upperFixer{},
		Metrics: m,
		Logger:  quietLogger,
	}).Handler()
}

func get(h http.Handler, target, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSSR_Page(t *testing.T) {
	cfg := devProject(t)
	h := newTestServer(t, cfg, nil)

	rec := get(h, "/", "text/html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body:\n%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`<div id="root" data-server-rendered="true"><h1>Home</h1></div>`,
		"<!-- transformed / -->",
		`href="/src/index.css"`,
		`href="/src/app.css"`,
		`href="/src/pages/home.module.css"`,
		ReloadPath,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "__SSG_HASH__") {
		t.Error("dev pages should not carry a build hash")
	}
}

func TestSSR_PageWithLoader(t *testing.T) {
	h := newTestServer(t, devProject(t), nil)

	rec := get(h, "/posts/42", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<p>post 42</p>") {
		t.Errorf("status = %d, body:\n%s", rec.Code, rec.Body.String())
	}
}

func TestSSR_Loader(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"json", "/posts/7?_data=1", http.StatusOK, `{"id":"7"}`},
		{"no loader", "/?_data=0&index", http.StatusOK, "There is no loader for the route: 0"},
		{"unknown route", "/?_data=9", http.StatusNotFound, "Route not found: 9"},
		{"redirect", "/old?_data=2", http.StatusFound, ""},
	}

	m := metrics.New()
	h := newTestServer(t, devProject(t), m)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.target, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}

	scrape := get(h, "/metrics", "").Body.String()
	if !strings.Contains(scrape, `ssg_loader_requests_total{code="200"} 2`) {
		t.Errorf("loader metrics missing:\n%s", scrape)
	}
}

func TestSSR_Errors(t *testing.T) {
	h := newTestServer(t, devProject(t), nil)

	t.Run("redirect", func(t *testing.T) {
		rec := get(h, "/old", "text/html")
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/new" {
			t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("non-canonical path", func(t *testing.T) {
		rec := get(h, "/posts//1?x=1", "text/html")
		if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/posts/1?x=1" {
			t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("bad path", func(t *testing.T) {
		rec := get(h, "/a%00b", "text/html")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := get(h, "/missing", "text/html")
		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "No route matches /missing") {
			t.Errorf("status = %d, body:\n%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("render failure", func(t *testing.T) {
		rec := get(h, "/broken", "text/html")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"FIXED", "E700", "component exploded"} {
			if !strings.Contains(body, want) {
				t.Errorf("error page missing %q:\n%s", want, body)
			}
		}
	})
}

func TestSSR_Assets(t *testing.T) {
	bundler := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "module %s", r.URL.Path)
	}))
	defer bundler.Close()

	cfg := devProject(t)
	cfg.Dev.Bundler = bundler.URL
	h := NewServer(ServerOptions{
		Config:  cfg,
		Adapter: adapter.Context{Kind: adapter.KindRemix, Routes: devRoutes()},
		Graph:   devGraph,
		Index:   markingIndex{},
		Fixer:   upperFixer{},
		Logger:  quietLogger,
	}).Handler()

	if rec := get(h, "/robots.txt", ""); rec.Body.String() != "User-agent: *" {
		t.Errorf("public file = %q", rec.Body.String())
	}
	if rec := get(h, "/src/main.ts", "*/*"); rec.Body.String() != "module /src/main.ts" {
		t.Errorf("proxied module = %q", rec.Body.String())
	}
	const payload = "outside-public-3f9c1e"
	if err := os.WriteFile(filepath.Join(cfg.Root, "secret.txt"), []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}
	for _, target := range []string{"/../secret.txt", "/..%2fsecret.txt", "/public/../secret.txt"} {
		if rec := get(h, target, ""); strings.Contains(rec.Body.String(), payload) {
			t.Errorf("%s served a file outside the public dir", target)
		}
	}
}

func TestSSR_BaseGuard(t *testing.T) {
	cfg := devProject(t)
	cfg.Base = "/docs/"
	h := newTestServer(t, cfg, nil)

	rec := get(h, "/", "text/html")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/docs/" {
		t.Errorf("root: status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = get(h, "/posts/1", "text/html")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "/docs/posts/1") {
		t.Errorf("outside base: status = %d, body:\n%s", rec.Code, rec.Body.String())
	}

	rec = get(h, "/docs/posts/1", "text/html")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "post 1") {
		t.Errorf("inside base: status = %d, body:\n%s", rec.Code, rec.Body.String())
	}
}

func TestIsPageRequest(t *testing.T) {
	tests := []struct {
		method string
		target string
		accept string
		want   bool
	}{
		{http.MethodGet, "/", "text/html", true},
		{http.MethodGet, "/about", "", true},
		{http.MethodGet, "/about/index.html", "", true},
		{http.MethodHead, "/about", "text/html", true},
		{http.MethodGet, "/src/main.ts", "*/*", false},
		{http.MethodGet, "/@vite/client", "*/*", false},
		{http.MethodGet, "/api", "application/json", false},
		{http.MethodPost, "/about", "text/html", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		if got := IsPageRequest(req); got != tt.want {
			t.Errorf("IsPageRequest(%s %s) = %v, want %v", tt.method, tt.target, got, tt.want)
		}
	}
}

func TestErrorRecovery_Middleware(t *testing.T) {
	rec := httptest.NewRecorder()
	h := NewErrorRecovery(upperFixer{}, nil, quietLogger).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "FIXED") || !strings.Contains(body, "handler exploded") || !strings.Contains(body, "goroutine") {
		t.Errorf("error page should carry the fixed stack:\n%s", body)
	}
	if strings.Contains(body, ReloadPath) {
		t.Error("reload client injected without a reload server")
	}
}
