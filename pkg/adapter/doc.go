// Package adapter renders one page path through one of three routing
// paradigms behind a single contract.
//
//	a, err := adapter.New(&adapter.Context{Kind: adapter.KindRemix, Routes: tree})
//	res, err := a.Render(ctx, "/docs/a")
//
// KindRemix is a data router: the path is matched against the full tree,
// every matched loader runs, and components compose from the leaf outward
// through their Outlet. Head tags come from the renderer's head collector.
//
// KindTanstack is a file-tree router. Each render builds a throwaway
// router seeded with the path, and the router's head output is rendered
// into a hidden marker element inside the app. After rendering, the
// marker's contents become the page's head tags and the marker is removed.
//
// KindSinglePage has no router; Context.App is rendered as is.
//
// Adapters are cheap. The orchestrator creates a fresh one per page so no
// state leaks between renders.
package adapter
