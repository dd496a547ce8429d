package ssg

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/dev"
	"github.com/vango-dev/ssg/pkg/routes"
)

func TestDevLoaderUsesBuildRouteIDs(t *testing.T) {
	app := &App{Routes: []*routes.Route{{
		Path: "/",
		Children: []*routes.Route{{
			Path: "a",
			Loader: func(context.Context, routes.LoaderArgs) (any, error) {
				return "A", nil
			},
		}},
	}}}
	cfg := config.New()
	cfg.Root = t.TempDir()

	h := dev.NewSSR(dev.SSROptions{
		Config:  cfg,
		Adapter: app.adapterContext(cfg),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a?_data=0-0", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"A"`) {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if app.Routes[0].Children[0].ID != "" {
		t.Error("app routes were modified")
	}
}
