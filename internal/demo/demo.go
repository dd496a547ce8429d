// Package demo is a small blog used by the ssg command when no application
// is linked in. It exercises nested layouts, loaders, static paths and head
// tags.
package demo

import (
	"context"
	"fmt"
	"sort"

	"github.com/vango-dev/ssg"
	"github.com/vango-dev/ssg/pkg/vdom"
)

// Post is a blog entry.
type Post struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Posts is the demo content, keyed by slug.
var Posts = map[string]Post{
	"hello-world":  {Slug: "hello-world", Title: "Hello, world", Body: "The first post."},
	"static-sites": {Slug: "static-sites", Title: "Static sites", Body: "Every page here was rendered ahead of time."},
}

// App returns the demo application with the data router.
func App() *ssg.App {
	return New(ssg.KindRemix)
}

// New returns the demo application for kind. The single page variant
// renders only the home page, with no router.
func New(kind ssg.Kind) *ssg.App {
	if kind == ssg.KindSinglePage {
		return &ssg.App{
			Kind: kind,
			Shell: func(*ssg.VNode) *ssg.VNode {
				return layout(ssg.Props{Outlet: home(ssg.Props{LoaderData: sortedPosts()})})
			},
		}
	}
	return &ssg.App{Kind: kind, Routes: Routes()}
}

// Routes returns the demo route tree.
func Routes() []*ssg.Route {
	return []*ssg.Route{
		{
			Path:      "/",
			Entry:     "src/root.tsx",
			Component: layout,
			Children: []*ssg.Route{
				{Index: true, Entry: "src/pages/home.tsx", Loader: listPosts, Component: home},
				{Path: "about", Entry: "src/pages/about.tsx", Component: about},
				{
					Path:           "posts/:slug",
					Entry:          "src/pages/post.tsx",
					Loader:         loadPost,
					GetStaticPaths: postPaths,
					Component:      post,
				},
				{Path: "*", Component: notFound},
			},
		},
	}
}

func sortedPosts() []Post {
	list := make([]Post, 0, len(Posts))
	for _, p := range Posts {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Slug < list[j].Slug })
	return list
}

func listPosts(context.Context, ssg.LoaderArgs) (any, error) {
	return sortedPosts(), nil
}

func loadPost(_ context.Context, args ssg.LoaderArgs) (any, error) {
	p, ok := Posts[args.Params["slug"]]
	if !ok {
		return nil, fmt.Errorf("post %q not found", args.Params["slug"])
	}
	return p, nil
}

func postPaths(context.Context) ([]string, error) {
	posts := sortedPosts()
	paths := make([]string, len(posts))
	for i, p := range posts {
		paths[i] = "posts/" + p.Slug
	}
	return paths, nil
}

func layout(p ssg.Props) *ssg.VNode {
	return vdom.Fragment(
		vdom.HTMLAttributes(vdom.Lang("en")),
		vdom.HeadTags(vdom.Meta(vdom.Name("description"), vdom.Content("A pre-rendered blog"))),
		vdom.Header(vdom.Nav(
			vdom.A(vdom.Href("/"), "Home"),
			vdom.A(vdom.Href("/about"), "About"),
		)),
		vdom.Main(p.Outlet),
	)
}

func home(p ssg.Props) *ssg.VNode {
	posts, _ := p.LoaderData.([]Post)
	return vdom.Fragment(
		vdom.HeadTags(vdom.Title(vdom.Text("Blog"))),
		vdom.H1("Posts"),
		vdom.Ul(vdom.Range(posts, func(post Post, _ int) *vdom.VNode {
			return vdom.Li(vdom.A(vdom.Href("/posts/"+post.Slug), post.Title))
		})),
	)
}

func about(ssg.Props) *ssg.VNode {
	return vdom.Fragment(
		vdom.HeadTags(vdom.Title(vdom.Text("About"))),
		vdom.H1("About"),
		vdom.P("This site is rendered by ssg."),
	)
}

func post(p ssg.Props) *ssg.VNode {
	data, _ := p.LoaderData.(Post)
	return vdom.Article(
		vdom.HeadTags(vdom.Title(vdom.Text(data.Title))),
		vdom.H1(data.Title),
		vdom.P(data.Body),
	)
}

func notFound(ssg.Props) *ssg.VNode {
	return vdom.Fragment(
		vdom.HeadTags(vdom.Title(vdom.Text("Not found"))),
		vdom.H1("Page not found"),
	)
}
