package value

import "github.com/google/go-cmp/cmp"

// Diff returns a human-readable report of the differences between want and
// got, or "" when they are equal.
func Diff(want, got Value) string {
	return cmp.Diff(Export(want), Export(got))
}
