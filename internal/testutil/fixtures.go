// Package testutil holds helpers shared by package tests: a callback recorder
// and fixed data sets.
package testutil

// People returns the ordering fixture: a aged 5, b aged 10, c aged 1.
//
// Ordered by age the keys come back as [b, a, c]; the last one of that order
// is c and the first is b.
func People() map[string]any {
	return map[string]any{
		"a": map[string]any{"age": 5},
		"b": map[string]any{"age": 10},
		"c": map[string]any{"age": 1},
	}
}
