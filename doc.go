// Package firemock emulates the Firebase Realtime Database in process, so
// application code that reads, writes and listens to a realtime database can
// be tested without a network service.
//
// A Database is one session: a hierarchical store plus the listeners
// subscribed to it. Tests create one per case and call Reset between runs.
//
//	db := firemock.New(firemock.WithDelay(firemock.NoDelay()))
//	_ = db.Set("people/a", map[string]any{"age": 5})
//
//	snap, err := db.Ref("people").OrderByChild("age").LimitToFirst(1).Once(firemock.Value)
//
// Writes are synchronous. Listener callbacks run inside the write that
// triggered them and may write again. The only waiting happens in Once and
// in the write methods of Reference, which sleep for the configured delay to
// imitate network latency.
//
// Ordering follows the emulated client's convention: comparators report the
// greater record first, so ForEach walks children in descending order.
package firemock
