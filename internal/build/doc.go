// Package build pre-renders every page of an application into static HTML.
//
// This package handles:
//   - Static path enumeration and filtering
//   - Page rendering under a bounded render queue
//   - HTML composition with preload links and collected styles
//   - Critical CSS inlining in a serialized queue
//   - Static loader data manifest generation
//   - Post-build hooks (precache manifest, onFinished, watchdog)
//
// # Usage
//
//	builder := build.New(cfg, build.Options{
//	    Adapter: adapter.Context{Kind: adapter.KindRemix, Routes: tree},
//	})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Rendered %d pages in %s\n", len(result.Pages), result.Duration)
//
// # Input Structure
//
// The client bundler runs first and leaves its output in outDir:
//
//	dist/
//	├── index.html             # Built HTML template
//	├── .vite/
//	│   ├── manifest.json      # Module manifest
//	│   └── ssr-manifest.json  # Module -> emitted files
//	└── assets/                # Fingerprinted bundles
//
// # Output Structure
//
//	dist/
//	├── index.html                                    # /
//	├── docs/a.html                                   # /docs/a (flat)
//	├── static-loader-data-manifest-<hash>.json       # Loader data per page
//	└── precache-manifest.json                        # With precache enabled
//
// # Failure Policy
//
// The first page that fails cancels the build. Renders that have not
// started are skipped, renders in flight finish, and the first error is
// returned with the failing path. Nothing after the render phase runs.
package build
