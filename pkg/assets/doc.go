// Package assets resolves which emitted files a page depends on.
//
// The client bundler writes two manifests:
//
//	manifest.json      module id -> {file, css, assets, dynamicImports}
//	ssr-manifest.json  module id -> emitted files the module contributes
//
// Given a page's entry modules, Collect follows dynamicImports to the full
// reachable module set (cycle-safe) and maps each module to its emitted
// files. Misses are skipped: preload hints are an optimization, and a
// partial set is still a valid result.
//
//	m, _ := assets.LoadManifest("dist/.vite/manifest.json")
//	ssr, _ := assets.LoadSSRManifest("dist/.vite/ssr-manifest.json")
//	files := assets.NewResolver(m, ssr, "/").Collect("src/pages/a.tsx")
//	links := assets.PreloadLinks(files)
package assets
