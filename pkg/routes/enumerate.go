package routes

import (
	"context"
	"fmt"
	"strings"

	"github.com/vango-dev/ssg/pkg/routepath"
)

// Filter selects the paths to render from the enumerated list.
type Filter func(ctx context.Context, paths []string, tree []*Route) ([]string, error)

// StaticPathsError reports a failing static path provider.
type StaticPathsError struct {
	RouteID string
	Pattern string
	Err     error
}

func (e *StaticPathsError) Error() string {
	return fmt.Sprintf("routes: getStaticPaths for %q (route %s): %v", e.Pattern, e.RouteID, e.Err)
}

func (e *StaticPathsError) Unwrap() error { return e.Err }

// IsDynamic reports whether a path still contains a parameter or splat marker.
func IsDynamic(path string) bool {
	if strings.ContainsAny(path, ":*?") {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "$") {
			return true
		}
	}
	return false
}

type pathSet struct {
	seen  map[string]bool
	order []string
}

func (s *pathSet) add(p string) {
	p = routepath.WithLeadingSlash(p)
	if s.seen[p] {
		return
	}
	s.seen[p] = true
	s.order = append(s.order, p)
}

// Enumerate expands the tree into concrete page paths, ordered by traversal
// and deduplicated. An empty tree yields "/". Errors from lazy resolution or
// static path providers abort enumeration.
func Enumerate(ctx context.Context, tree []*Route) ([]string, error) {
	if len(tree) == 0 {
		return []string{"/"}, nil
	}

	set := &pathSet{seen: make(map[string]bool)}
	if err := enumerate(ctx, tree, "", set); err != nil {
		return nil, err
	}
	return set.order, nil
}

func enumerate(ctx context.Context, nodes []*Route, prefix string, set *pathSet) error {
	prefix = strings.TrimSuffix(prefix, "/")

	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := Resolve(ctx, n)
		if err != nil {
			return err
		}

		if r.Index && r.Path == "" {
			if prefix == "" {
				set.add("/")
			}
			continue
		}

		if r.Path == "" {
			if err := enumerate(ctx, r.Children, prefix, set); err != nil {
				return err
			}
			continue
		}

		path := routepath.Join(prefix, r.Path)

		if r.GetStaticPaths != nil && IsDynamic(path) {
			values, err := r.GetStaticPaths(ctx)
			if err != nil {
				return &StaticPathsError{RouteID: r.ID, Pattern: path, Err: err}
			}
			for _, v := range values {
				concrete := routepath.Join(prefix, v)
				set.add(concrete)
				if err := enumerate(ctx, r.Children, concrete, set); err != nil {
					return err
				}
			}
			continue
		}

		set.add(path)
		if err := enumerate(ctx, r.Children, path, set); err != nil {
			return err
		}
	}
	return nil
}

// DefaultFilter drops paths that still contain parameter or splat markers.
func DefaultFilter(_ context.Context, paths []string, _ []*Route) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !IsDynamic(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Dedupe returns paths without repeats, keeping first occurrences.
func Dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
