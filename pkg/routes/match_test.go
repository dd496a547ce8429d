package routes

import (
	"context"
	"testing"
)

func matchIDs(ms []Match) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.Route.ID
	}
	return ids
}

func TestMatchPath(t *testing.T) {
	tree := Prepare([]*Route{{
		ID:   "root",
		Path: "/",
		Children: []*Route{
			{ID: "home", Index: true},
			{ID: "user", Path: "users/:id"},
			{ID: "new", Path: "users/new"},
			{ID: "docs", Path: "docs", Children: []*Route{
				{ID: "docs-index", Index: true},
				{ID: "doc", Path: ":slug"},
			}},
			{ID: "lang", Path: ":lang?/about"},
			{ID: "files", Path: "files/*"},
		},
	}})

	tests := []struct {
		path   string
		want   []string
		params map[string]string
	}{
		{"/", []string{"root", "home"}, nil},
		{"/users/42", []string{"root", "user"}, map[string]string{"id": "42"}},
		{"/users/new", []string{"root", "new"}, nil},
		{"/USERS/new", []string{"root", "new"}, nil},
		{"/docs", []string{"root", "docs", "docs-index"}, nil},
		{"/docs/intro", []string{"root", "docs", "doc"}, map[string]string{"slug": "intro"}},
		{"/about", []string{"root", "lang"}, nil},
		{"/fr/about", []string{"root", "lang"}, map[string]string{"lang": "fr"}},
		{"/files/a/b.txt", []string{"root", "files"}, map[string]string{"*": "a/b.txt"}},
		{"/missing/deep", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := MatchPath(context.Background(), tree, tt.path, "/")
			if err != nil {
				t.Fatal(err)
			}
			ids := matchIDs(got)
			if len(ids) != len(tt.want) {
				t.Fatalf("MatchPath(%q) = %v, want %v", tt.path, ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("MatchPath(%q)[%d] = %q, want %q", tt.path, i, ids[i], tt.want[i])
				}
			}
			for k, v := range tt.params {
				if got[0].Params[k] != v {
					t.Errorf("param %q = %q, want %q", k, got[0].Params[k], v)
				}
			}
		})
	}
}

func TestMatchPathBasename(t *testing.T) {
	tree := Prepare([]*Route{{Index: true}, {Path: "a"}})

	got, _ := MatchPath(context.Background(), tree, "/app/a", "/app/")
	if len(got) != 1 || got[0].Route.Path != "a" {
		t.Errorf("MatchPath(/app/a) = %v", matchIDs(got))
	}
	got, _ = MatchPath(context.Background(), tree, "/app", "/app/")
	if len(got) != 1 || !got[0].Route.Index {
		t.Errorf("MatchPath(/app) = %v", matchIDs(got))
	}
	if got, _ := MatchPath(context.Background(), tree, "/other/a", "/app/"); got != nil {
		t.Errorf("path outside basename matched: %v", matchIDs(got))
	}
}

func TestMatchPathFileTreeParams(t *testing.T) {
	tree := Prepare([]*Route{{Path: "/posts", Children: []*Route{{Path: "$postId"}}}})

	got, _ := MatchPath(context.Background(), tree, "/posts/hello", "")
	if len(got) != 2 || got[1].Params["postId"] != "hello" {
		t.Errorf("MatchPath() = %+v", got)
	}
}

func TestResponse(t *testing.T) {
	r := Redirect("/login", 0)
	if !r.IsRedirect() || r.Status != 302 {
		t.Errorf("Redirect() = %+v", r)
	}
	if (&Response{Status: 200}).IsRedirect() {
		t.Error("200 is not a redirect")
	}
}
