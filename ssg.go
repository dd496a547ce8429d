// Package ssg pre-renders single-page applications into static HTML.
//
// An App describes the route tree and the router flavour that renders it.
// Build renders every static path into the bundler's output directory,
// writes the loader data manifest and runs the post-build hooks. Dev serves
// the same rendering on demand in front of the bundler's dev server.
//
//	app := &ssg.App{
//	    Kind: ssg.KindRemix,
//	    Routes: []*ssg.Route{
//	        {Path: "/", Component: Layout, Children: []*ssg.Route{
//	            {Index: true, Component: Home},
//	            {Path: "posts/:slug", Loader: LoadPost, Component: Post,
//	                GetStaticPaths: PostPaths},
//	        }},
//	    },
//	}
//	app.Main()
package ssg

import (
	"github.com/vango-dev/ssg/internal/build"
	"github.com/vango-dev/ssg/internal/config"
	"github.com/vango-dev/ssg/internal/publish"
	"github.com/vango-dev/ssg/pkg/adapter"
	"github.com/vango-dev/ssg/pkg/routes"
	"github.com/vango-dev/ssg/pkg/vdom"
)

// =============================================================================
// Routes (re-export from pkg/routes)
// =============================================================================

// Route is one node of the route tree.
type Route = routes.Route

// Props are passed to route components.
type Props = routes.Props

// LoaderArgs are passed to route loaders.
type LoaderArgs = routes.LoaderArgs

// Response is a raw loader response, such as a redirect.
type Response = routes.Response

// Filter selects which enumerated paths are rendered.
type Filter = routes.Filter

// Redirect returns a redirect response for a loader.
var Redirect = routes.Redirect

// DefaultFilter drops paths that still carry parameters.
var DefaultFilter = routes.DefaultFilter

// =============================================================================
// Adapters (re-export from pkg/adapter)
// =============================================================================

// Kind selects the router flavour.
type Kind = adapter.Kind

const (
	KindRemix      = adapter.KindRemix
	KindTanstack   = adapter.KindTanstack
	KindSinglePage = adapter.KindSinglePage
)

// =============================================================================
// UI tree (re-export from pkg/vdom)
// =============================================================================

// VNode is a node of the UI tree.
type VNode = vdom.VNode

// =============================================================================
// Build (re-export from internal packages)
// =============================================================================

// Config is the project configuration read from ssg.json.
type Config = config.Config

// BuildResult describes a finished build.
type BuildResult = build.Result

// PublishResult summarizes an upload.
type PublishResult = publish.Result

// PageHook transforms a document for a path. Returning "" keeps the input.
type PageHook = build.PageHook

// LoadConfig loads ssg.json from the working directory or its parents,
// falling back to defaults.
var LoadConfig = config.LoadFromWorkingDir
