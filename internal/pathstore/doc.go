// Package pathstore holds the hierarchical value tree of the emulated database.
//
// The tree is addressed by paths (see keypath). Reads of unknown paths return
// no value rather than an error. The store never holds nil: writing nil is
// not allowed, use Delete.
//
// Values passed in and handed out are deep copies, so callers may keep or
// mutate them freely.
//
// A Store is not safe for concurrent use; the database session serialises
// access.
package pathstore
