// Package notify decides which listeners a write affects and delivers their
// events.
//
// A write hands the engine the changed paths with their new values plus two
// views of the store: a copy taken before the write and the store after it.
// The engine then:
//
//  1. Groups changes by listener. A listener is affected by every changed path
//     equal to or below the path it watches; all of them fold into one change
//     for that listener, so a multi-path write touching several descendants
//     yields one value event, not one per path.
//  2. Resolves keys and values. Value listeners get the value now stored at
//     their path (or the query result for query listeners). Child listeners
//     get one watcher event per immediate child the change implicates.
//  3. Applies the dispatch table:
//
//	child_removed   new value is nil and the child existed   snapshot of the PRIOR value
//	child_added     child did not exist and new value is set  snapshot of the new value
//	child_changed   new value is set (also for new children)  snapshot of the new value
//	child_moved     same condition as child_added             snapshot of the new value
//	value           always                                    value at the listener path
//
// child_moved does not track sibling order; it mirrors child_added. This is a
// known limitation.
//
// Planning (steps 1-3) runs while the caller holds the database lock. Delivery
// runs after the lock is released, over a copy of the listener list, so a
// callback may write to the database or change subscriptions.
package notify
