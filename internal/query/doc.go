// Package query orders, filters and limits the children of a stored value
// and wraps the outcome in an immutable Snapshot.
//
// A Descriptor is built step by step (OrderBy, filters, Limit); every step
// returns a new Descriptor so a query can be shared and extended without
// affecting earlier readers.
//
// # Ordering convention
//
// Comparators return -1 when the FIRST argument is greater. Iteration with a
// comparator therefore runs in descending order: orderByChild("age") over ages
// 5, 10, 1 yields 10, 5, 1. Limits slice this ordered array, so LimitToFirst(1)
// keeps the largest record. Range filters (StartAt/EndAt/EqualTo) compare in
// the natural ascending sense: StartAt(5) keeps records whose target is >= 5.
//
// # Pipeline
//
//	children (natural key order)
//	  -> sort by comparator
//	  -> filters, in the order they were added
//	  -> limit
//	  -> Snapshot holding the surviving records in natural key order
//
// Sorting is materialised again only when a consumer iterates with ForEach.
package query
