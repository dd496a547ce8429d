package routes

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

type lazyCell struct {
	mu       sync.Mutex
	resolved *Route
}

// Resolve returns r with its lazy fields merged in. On a node from a
// prepared tree the lazy function runs at most once across all goroutines;
// failed resolutions are not cached and run again on the next call. Nodes
// that did not come from Prepare resolve on every call. r itself is never
// modified.
func Resolve(ctx context.Context, r *Route) (*Route, error) {
	if r == nil || r.Lazy == nil {
		return r, nil
	}

	cell := r.lazy
	if cell == nil {
		extra, err := r.Lazy(ctx)
		if err != nil {
			return nil, fmt.Errorf("routes: resolve lazy route %q: %w", r.ID, err)
		}
		return merge(r, extra), nil
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()
	if cell.resolved != nil {
		return cell.resolved, nil
	}

	extra, err := r.Lazy(ctx)
	if err != nil {
		return nil, fmt.Errorf("routes: resolve lazy route %q: %w", r.ID, err)
	}
	cell.resolved = merge(r, extra)
	return cell.resolved, nil
}

// merge copies base and applies the non-zero fields of extra. The result
// has no Lazy function. Children from extra without ids inherit ids from
// base's position.
func merge(base, extra *Route) *Route {
	out := *base
	out.Lazy = nil
	out.lazy = nil
	if extra == nil {
		return &out
	}
	if extra.Path != "" {
		out.Path = extra.Path
	}
	if extra.Index {
		out.Index = true
	}
	if extra.Entry != "" {
		out.Entry = extra.Entry
	}
	if len(extra.Chunks) > 0 {
		out.Chunks = extra.Chunks
	}
	if extra.Loader != nil {
		out.Loader = extra.Loader
	}
	if extra.GetStaticPaths != nil {
		out.GetStaticPaths = extra.GetStaticPaths
	}
	if extra.Component != nil {
		out.Component = extra.Component
	}
	if len(extra.Children) > 0 {
		out.Children = prepare(extra.Children, out.ID)
	}
	return &out
}

// Prepare returns a copy of the tree in which every node has an id.
// Missing ids are derived from tree position: "0", "1", "0-0", "0-1", ...
// Lazy nodes of the copy share one resolution, independent of other copies.
func Prepare(tree []*Route) []*Route {
	return prepare(tree, "")
}

func prepare(nodes []*Route, parentID string) []*Route {
	out := make([]*Route, 0, len(nodes))
	for i, n := range nodes {
		if n == nil {
			continue
		}
		c := *n
		if c.ID == "" {
			if parentID == "" {
				c.ID = strconv.Itoa(i)
			} else {
				c.ID = parentID + "-" + strconv.Itoa(i)
			}
		}
		if c.Lazy != nil {
			c.lazy = &lazyCell{}
		}
		if len(c.Children) > 0 {
			c.Children = prepare(c.Children, c.ID)
		}
		out = append(out, &c)
	}
	return out
}

// Walk visits every node of the tree depth first, resolving lazy nodes.
// Returning false from fn skips the node's children.
func Walk(ctx context.Context, tree []*Route, fn func(*Route) bool) error {
	for _, n := range tree {
		r, err := Resolve(ctx, n)
		if err != nil {
			return err
		}
		if !fn(r) {
			continue
		}
		if err := Walk(ctx, r.Children, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the node with the given id, resolving lazy nodes on the way.
func Find(ctx context.Context, tree []*Route, id string) (*Route, error) {
	var found *Route
	err := Walk(ctx, tree, func(r *Route) bool {
		if found != nil {
			return false
		}
		if r.ID == id {
			found = r
			return false
		}
		return true
	})
	return found, err
}
