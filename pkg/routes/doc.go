// Package routes models the application's route tree and expands it into
// the concrete page paths a static build renders.
//
// # Route Tree
//
// A Route describes one level of the tree: a path pattern (or an index
// flag), optional data loader, optional lazy resolver, optional static path
// provider and children. Patterns use ":name" and ":name?" for parameters,
// "*" for a splat, and "$name"/"$" in file-tree style trees.
//
// Prepare assigns stable ids from tree position ("0", "0-1", ...) to nodes
// that have none. Lazy fields are resolved through Resolve, which memoizes
// per node and never mutates the input tree.
//
// # Enumeration
//
//	paths, err := routes.Enumerate(ctx, tree)
//	paths, err = routes.DefaultFilter(ctx, paths, tree)
//
// Enumerate walks the tree depth first and returns an ordered set of paths.
// Dynamic nodes with a static path provider are expanded; those without one
// surface as patterns which DefaultFilter removes.
package routes
