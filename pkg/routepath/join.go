package routepath

import "strings"

// Join joins a route pattern onto an accumulated prefix. The prefix loses
// its trailing slash first; a pattern starting with "/" is absolute and
// replaces the prefix.
func Join(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" || strings.HasPrefix(pattern, "/") {
		return pattern
	}
	if pattern == "" {
		return prefix
	}
	return prefix + "/" + pattern
}

// JoinSegments joins two URL pieces with exactly one slash between them.
func JoinSegments(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
}

// WithLeadingSlash ensures path starts with "/".
func WithLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// WithTrailingSlash ensures path ends with "/".
func WithTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// StripBase removes the public base from a request path.
// A path equal to base becomes "/"; a path outside base is returned as is.
func StripBase(path, base string) string {
	if path == base {
		return "/"
	}
	b := WithTrailingSlash(base)
	if strings.HasPrefix(path, b) {
		return path[len(b)-1:]
	}
	return path
}

// CleanURL drops the query string and fragment.
func CleanURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
