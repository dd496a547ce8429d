package routes

import (
	"context"
	"sort"
	"strings"

	"github.com/vango-dev/ssg/pkg/routepath"
)

// Match is one level of a matched route chain, root first.
type Match struct {
	Route    *Route
	Params   map[string]string
	Pathname string
}

// Segment scores, highest tried first.
const (
	scoreStatic  = 10
	scoreDynamic = 3
	scoreIndex   = 2
	scoreEmpty   = 1
	scoreSplat   = -2
)

// MatchPath matches pathname against the tree after removing basename.
// Static segments are tried before parameters, parameters before splats;
// a failed branch backtracks to the next candidate. Lazy nodes are resolved
// as they are reached. It returns nil when nothing matches.
func MatchPath(ctx context.Context, tree []*Route, pathname, basename string) ([]Match, error) {
	if b := strings.TrimSuffix(basename, "/"); b != "" {
		switch {
		case pathname == b:
			pathname = "/"
		case strings.HasPrefix(pathname, b+"/"):
			pathname = pathname[len(b):]
		default:
			return nil, nil
		}
	}

	segments := splitSegments(pathname)
	params := make(map[string]string)
	chain, err := matchLevel(ctx, tree, segments, params, "")
	if err != nil || chain == nil {
		return nil, err
	}
	for i := range chain {
		chain[i].Params = params
	}
	return chain, nil
}

func matchLevel(ctx context.Context, nodes []*Route, segments []string, params map[string]string, base string) ([]Match, error) {
	resolved := make([]*Route, 0, len(nodes))
	for _, n := range nodes {
		r, err := Resolve(ctx, n)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, r)
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return rank(resolved[i]) > rank(resolved[j])
	})

	for _, r := range resolved {
		if r.Index {
			if len(segments) == 0 {
				return []Match{{Route: r, Pathname: orRoot(base)}}, nil
			}
			continue
		}

		bound := make(map[string]string)
		rest, consumed, ok := consume(splitSegments(r.Path), segments, bound)
		if !ok {
			continue
		}
		pathname := base
		if len(consumed) > 0 {
			pathname = base + "/" + strings.Join(consumed, "/")
		}

		for k, v := range bound {
			params[k] = v
		}
		if len(r.Children) > 0 {
			chain, err := matchLevel(ctx, r.Children, rest, params, pathname)
			if err != nil {
				return nil, err
			}
			if chain != nil {
				return append([]Match{{Route: r, Pathname: orRoot(pathname)}}, chain...), nil
			}
		}
		if len(rest) == 0 && (r.Path != "" || len(r.Children) == 0) {
			return []Match{{Route: r, Pathname: orRoot(pathname)}}, nil
		}
		for k := range bound {
			delete(params, k)
		}
	}
	return nil, nil
}

// consume matches pattern segments against the front of segments.
// Optional segments are tried present first, then absent.
func consume(pattern, segments []string, params map[string]string) (rest, consumed []string, ok bool) {
	n, ok := consumeAt(pattern, segments, 0, params)
	if !ok {
		return nil, nil, false
	}
	return segments[n:], segments[:n], true
}

func consumeAt(pattern, segments []string, i int, params map[string]string) (int, bool) {
	if len(pattern) == 0 {
		return i, true
	}
	p, next := pattern[0], pattern[1:]

	switch {
	case p == "*" || p == "$":
		value, err := routepath.DecodeSegment(strings.Join(segments[i:], "/"), true)
		if err != nil {
			return 0, false
		}
		params["*"] = value
		return len(segments), true

	case strings.HasPrefix(p, ":") || strings.HasPrefix(p, "$"):
		name := p[1:]
		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		if i < len(segments) {
			if value, err := routepath.DecodeSegment(segments[i], false); err == nil {
				params[name] = value
				if n, ok := consumeAt(next, segments, i+1, params); ok {
					return n, true
				}
				delete(params, name)
			}
		}
		if optional {
			return consumeAt(next, segments, i, params)
		}
		return 0, false

	default:
		optional := strings.HasSuffix(p, "?")
		lit := strings.TrimSuffix(p, "?")
		if i < len(segments) && strings.EqualFold(segments[i], lit) {
			if n, ok := consumeAt(next, segments, i+1, params); ok {
				return n, true
			}
		}
		if optional {
			return consumeAt(next, segments, i, params)
		}
		return 0, false
	}
}

func rank(r *Route) int {
	if r.Index {
		return scoreIndex
	}
	segs := splitSegments(r.Path)
	if len(segs) == 0 {
		return scoreEmpty
	}
	score := len(segs)
	for _, s := range segs {
		switch {
		case s == "*" || s == "$":
			score += scoreSplat
		case strings.HasPrefix(s, ":") || strings.HasPrefix(s, "$"):
			score += scoreDynamic
		default:
			score += scoreStatic
		}
	}
	return score
}

func splitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
