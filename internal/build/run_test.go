package build

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/critical"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/scheduler"
)

const runTemplate = `<html><head><title>T</title><link rel="stylesheet" href="/app.css"></head><body><div id="root"></div></body></html>`

// fakeAdapter renders the path as a paragraph.
type fakeAdapter struct {
	delay time.Duration
	fail  map[string]error
}

func (a *fakeAdapter) Render(ctx context.Context, path string) (*adapter.RenderResult, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := a.fail[path]; err != nil {
		return nil, err
	}
	return &adapter.RenderResult{
		AppHTML:        "<p>" + path + "</p>",
		HTMLAttributes: `lang="en"`,
		StyleTag:       "<style data-ssg-styles>p{}</style>",
		RouterContext:  adapter.RouterContext{LoaderData: map[string]any{"0": path}},
	}, nil
}

func (a *fakeAdapter) HandleLoader(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

func factoryFor(a adapter.Adapter) AdapterFactory {
	return func(string) (adapter.Adapter, error) { return a, nil }
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	paths := []string{"/", "/a", "/b/"}

	result, err := Run(context.Background(), paths, factoryFor(&fakeAdapter{}), runTemplate, RunOptions{
		OutDir: out,
		Hash:   "h1",
		Logger: discardLogger,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	files := map[string]string{"/": "index.html", "/a": "a.html", "/b/": "b/index.html"}
	if len(result.Pages) != len(files) {
		t.Fatalf("Pages = %v", result.Pages)
	}
	for _, page := range result.Pages {
		if page.File != files[page.Path] {
			t.Errorf("page %s file = %s, want %s", page.Path, page.File, files[page.Path])
		}
		doc := readFile(t, filepath.Join(out, filepath.FromSlash(page.File)))
		if page.Size != len(doc) {
			t.Errorf("page %s size = %d, file has %d", page.Path, page.Size, len(doc))
		}
		for _, want := range []string{
			`<head><style data-ssg-styles>p{}</style>`,
			`<html lang="en">`,
			`<div id="root" data-server-rendered="true"><p>` + page.Path + `</p></div>`,
			`window.__SSG_HASH__ = 'h1'`,
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("%s missing %q:\n%s", page.File, want, doc)
			}
		}
	}

	if got := strings.Join(result.LoaderData.Paths(), ","); got != "/,/a,/b/" {
		t.Errorf("loader paths = %s", got)
	}
}

func TestRunConcurrency(t *testing.T) {
	sched := scheduler.New(map[string]int{scheduler.ClassRender: 2, scheduler.ClassCritical: 1})
	paths := []string{"/1", "/2", "/3", "/4", "/5", "/6"}

	start := time.Now()
	_, err := Run(context.Background(), paths, factoryFor(&fakeAdapter{delay: 30 * time.Millisecond}), runTemplate, RunOptions{
		OutDir:    t.TempDir(),
		Scheduler: sched,
		Logger:    discardLogger,
	})
	if err != nil {
		t.Fatal(err)
	}

	if peak := sched.Peak(scheduler.ClassRender); peak != 2 {
		t.Errorf("render peak = %d, want 2", peak)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, renders were not bounded", elapsed)
	}
}

func TestRunCriticalSerialized(t *testing.T) {
	var active, peak atomic.Int32
	proc := critical.ProcessorFunc(func(_ context.Context, doc string) (string, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return doc, nil
	})

	out := t.TempDir()
	_, err := Run(context.Background(), []string{"/1", "/2", "/3", "/4"}, factoryFor(&fakeAdapter{}), runTemplate, RunOptions{
		OutDir:      out,
		Concurrency: 4,
		Critical:    proc,
		Logger:      discardLogger,
	})
	if err != nil {
		t.Fatal(err)
	}
	if peak.Load() != 1 {
		t.Errorf("critical peak = %d, want 1", peak.Load())
	}

	doc := readFile(t, filepath.Join(out, "1.html"))
	if !strings.Contains(doc, `<link rel="stylesheet" href="/app.css" crossorigin>`) {
		t.Errorf("stylesheet missing crossorigin:\n%s", doc)
	}
}

func TestRunFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"render error", fmt.Errorf("boom"), "E300"},
		{"response", &adapter.ResponseError{Path: "/bad", RouteID: "0", Response: routes.Redirect("/x", http.StatusFound)}, "E301"},
		{"not found", &adapter.NotFoundError{Path: "/bad"}, "E302"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAdapter{fail: map[string]error{"/bad": tt.err}}
			result, err := Run(context.Background(), []string{"/", "/bad", "/c"}, factoryFor(fa), runTemplate, RunOptions{
				OutDir: t.TempDir(),
				Logger: discardLogger,
			})
			if result != nil {
				t.Error("result should be nil on failure")
			}
			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if e.Code != tt.code || e.Path != "/bad" {
				t.Errorf("error = %s at %q, want %s at /bad", e.Code, e.Path, tt.code)
			}
		})
	}
}

func TestRunContainerMissing(t *testing.T) {
	_, err := Run(context.Background(), []string{"/"}, factoryFor(&fakeAdapter{}), "<html><head></head><body></body></html>", RunOptions{
		OutDir: t.TempDir(),
		Logger: discardLogger,
	})
	var e *errors.Error
	if !errors.As(err, &e) || e.Code != "E400" {
		t.Fatalf("error = %v, want E400", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := t.TempDir()
	_, err := Run(ctx, []string{"/", "/a"}, factoryFor(&fakeAdapter{}), runTemplate, RunOptions{
		OutDir: out,
		Logger: discardLogger,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("files written after cancel: %v", entries)
	}
}

func TestRunHooks(t *testing.T) {
	out := t.TempDir()
	_, err := Run(context.Background(), []string{"/"}, factoryFor(&fakeAdapter{}), runTemplate, RunOptions{
		OutDir: out,
		Logger: discardLogger,
		OnBeforePageRender: func(_ context.Context, _ string, doc string) (string, error) {
			return strings.Replace(doc, "<title>T</title>", "<title>Before</title>", 1), nil
		},
		OnPageRendered: func(_ context.Context, _ string, doc string) (string, error) {
			return strings.Replace(doc, "</body>", "<!-- after --></body>", 1), nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc := readFile(t, filepath.Join(out, "index.html"))
	if !strings.Contains(doc, "<title>Before</title>") || !strings.Contains(doc, "<!-- after -->") {
		t.Errorf("hooks not applied:\n%s", doc)
	}
}

func TestRunHookError(t *testing.T) {
	_, err := Run(context.Background(), []string{"/"}, factoryFor(&fakeAdapter{}), runTemplate, RunOptions{
		OutDir: t.TempDir(),
		Logger: discardLogger,
		OnPageRendered: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("hook broke")
		},
	})
	var e *errors.Error
	if !errors.As(err, &e) || e.Code != "E401" {
		t.Fatalf("error = %v, want E401", err)
	}
}
