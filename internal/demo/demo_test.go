package demo

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/ssg"
	"github.com/vango-dev/ssg/internal/config"
)

func TestLoadPost(t *testing.T) {
	tests := []struct {
		slug    string
		want    string
		wantErr bool
	}{
		{"hello-world", "Hello, world", false},
		{"missing", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			data, err := loadPost(context.Background(), ssg.LoaderArgs{Params: map[string]string{"slug": tt.slug}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadPost() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && data.(Post).Title != tt.want {
				t.Errorf("Title = %q, want %q", data.(Post).Title, tt.want)
			}
		})
	}
}

func TestNewKinds(t *testing.T) {
	tests := []struct {
		kind ssg.Kind
		want string
	}{
		{ssg.KindRemix, "/,/about,/posts/hello-world,/posts/static-sites"},
		{ssg.KindTanstack, "/,/about,/posts/hello-world,/posts/static-sites"},
		{ssg.KindSinglePage, "/"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cfg := config.New()
			cfg.Root = t.TempDir()
			got, err := New(tt.kind).Paths(context.Background(), cfg)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("Paths() = %v, want %s", got, tt.want)
			}
		})
	}
}
