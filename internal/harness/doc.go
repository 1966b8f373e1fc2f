// Package harness runs scripted scenarios against an emulated database and
// checks the events listeners received and the data left behind.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: people_by_age
//	description: "Adding a person wakes the ordered listener once"
//	config:
//	  stamp_push_ids: true
//	seed:
//	  people:
//	    a: { age: 5 }
//	listeners:
//	  - name: youngest
//	    path: people
//	    event: value
//	    query:
//	      order_by: child:age
//	      limit_to_last: 1
//	steps:
//	  - op: set
//	    path: people/b
//	    value: { age: 1 }
//	  - op: update
//	    path: people/a
//	    fields: { age: 6 }
//	  - op: remove
//	    path: people/a
//	  - op: push
//	    path: log
//	    value: "hello"
//	  - op: multi
//	    fields: { "people/c": { age: 3 }, "people/d": null }
//	  - op: off
//	    listener: youngest
//	assertions:
//	  - type: event_count
//	    listener: youngest
//	    count: 3
//	  - type: final_state
//	    path: people/b
//	    expect: { age: 1 }
//
// # Assertion Types
//
//   - event_count: a listener received exactly count events
//   - event_keys: the snapshot keys a listener received, in delivery order
//   - last_value: the value of the last snapshot a listener received
//   - final_state: the value stored at path, or absent: true
//   - query_order: the child keys a query returns, in iteration order
//
// # Deterministic Runs
//
// Every scenario runs in a fresh database with no simulated delay and
// numbered push keys ("push-0001", ...), so traces are identical across runs
// and can be compared with golden files. Seed data is written silently.
package harness
