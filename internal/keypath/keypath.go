// Package keypath canonicalises database paths.
//
// Callers may write paths with "/" or "." separators and with leading or
// trailing separators; all spellings of the same location canonicalise to the
// same "/"-joined string. The root is the empty path.
package keypath

import "strings"

// Separator is the canonical segment separator.
const Separator = "/"

// Segments splits p on "/" and ".", dropping empty segments.
func Segments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '.'
	})
}

// Normalize returns the canonical form of p.
func Normalize(p string) string {
	return strings.Join(Segments(p), Separator)
}

// Join normalises and joins path fragments.
func Join(parts ...string) string {
	var segs []string
	for _, part := range parts {
		segs = append(segs, Segments(part)...)
	}
	return strings.Join(segs, Separator)
}

// Parent returns the parent of p. The parent of the root is the root.
func Parent(p string) string {
	segs := Segments(p)
	if len(segs) == 0 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], Separator)
}

// Key returns the last segment of p, or "" for the root.
func Key(p string) string {
	segs := Segments(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Relative returns the segments of p below base and whether p is base or a
// descendant of base. Both arguments must already be canonical.
func Relative(base, p string) ([]string, bool) {
	if base == "" {
		return Segments(p), true
	}
	if p == base {
		return nil, true
	}
	if !strings.HasPrefix(p, base+Separator) {
		return nil, false
	}
	return Segments(p[len(base)+1:]), true
}

// IsRoot reports whether p addresses the root.
func IsRoot(p string) bool {
	return len(Segments(p)) == 0
}
