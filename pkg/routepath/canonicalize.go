package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Errors returned for request paths that cannot name a page.
var (
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-splat segment")
)

// Canonical returns the canonical form of an escaped request path: one
// leading slash, no empty or "." segments, and ".." resolved. A trailing
// slash is kept since "/docs/" and "/docs" are different pages.
func Canonical(p string) (string, error) {
	if strings.ContainsRune(p, '\\') {
		return "", ErrBackslashInPath
	}
	if strings.ContainsRune(p, 0) {
		return "", ErrNullByteInPath
	}
	for i := strings.IndexByte(p, '%'); i >= 0; i = nextEscape(p, i+3) {
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return "", ErrInvalidPercentEscape
		}
		if p[i+1] == '0' && p[i+2] == '0' {
			return "", ErrNullByteInPath
		}
	}

	segs := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return "", ErrPathEscapesRoot
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}

	out := "/" + strings.Join(segs, "/")
	if len(segs) > 0 && strings.HasSuffix(p, "/") {
		out += "/"
	}
	return out, nil
}

func nextEscape(p string, from int) int {
	if from >= len(p) {
		return -1
	}
	if i := strings.IndexByte(p[from:], '%'); i >= 0 {
		return from + i
	}
	return -1
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// DecodeSegment decodes a path segment bound to a route parameter. A decoded
// "/" is only allowed in splat parameters.
func DecodeSegment(segment string, isSplat bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !isSplat && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}
