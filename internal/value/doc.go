// Package value provides the value model stored by the emulated database.
//
// A stored value is one of:
//   - String: a string scalar
//   - Number: a float64 scalar
//   - Bool: a boolean scalar
//   - Object: a map of string keys to values
//
// Go nil stands for null and for "nothing stored here". The store never holds
// nil: writing nil is a deletion. Arrays supplied by callers are converted to
// objects keyed by their index, which is how the hosted service stores them.
//
// Value is a sealed interface; only the four types above implement it. This
// keeps type switches in the query and notification code exhaustive.
package value
