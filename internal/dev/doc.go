// Package dev provides the development server: on-demand page rendering in
// front of the bundler's dev server, plus browser reload.
//
// # Architecture
//
//   - SSR: renders page navigations with the same adapter and compositor as
//     a build, discovering stylesheets from the bundler's module graph
//   - Bundler: optionally runs the bundler dev server as a child process
//   - Watcher: polls the template, public directory and dev.watch entries
//   - ReloadServer: notifies browsers of changes and render errors
//   - ErrorRecovery: turns failures into 500 pages with fixed-up stacks
//
// Page paths are canonicalized first: "/docs//a" is redirected to "/docs/a"
// and paths with NUL bytes or malformed escapes are rejected with 400.
// Requests carrying the _data query parameter are answered by the
// adapter's loader protocol. Files under the public directory are served
// directly; everything else is proxied to dev.bundler.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config:  cfg,
//	    Adapter: adapter.Context{Kind: adapter.KindRemix, Routes: tree},
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Hot Reload Protocol
//
// The browser connects to /_ssg/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css", "file": "..."}    // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
