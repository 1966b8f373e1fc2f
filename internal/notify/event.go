package notify

import (
	"github.com/forest-fire/firemock-sub000/internal/listener"
	"github.com/forest-fire/firemock-sub000/internal/query"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Event is the closed set of events a listener can receive.
//
// This is a sealed interface: only ValueEvent, ChildAdded, ChildChanged,
// ChildRemoved and ChildMoved implement it.
type Event interface {
	eventNode()
	Type() listener.EventType
	Snapshot() *query.Snapshot
}

// ValueEvent carries the whole value at the listener's path.
type ValueEvent struct {
	Snap  *query.Snapshot
	Prior value.Value
}

// ChildAdded reports a child that did not exist before the write.
type ChildAdded struct {
	Snap *query.Snapshot
}

// ChildChanged reports a child that holds a value after the write.
type ChildChanged struct {
	Snap  *query.Snapshot
	Prior value.Value
}

// ChildRemoved reports a deleted child; Snap holds the value it had.
type ChildRemoved struct {
	Snap *query.Snapshot
}

// ChildMoved is raised under the same condition as ChildAdded.
type ChildMoved struct {
	Snap *query.Snapshot
}

func (ValueEvent) eventNode()   {}
func (ChildAdded) eventNode()   {}
func (ChildChanged) eventNode() {}
func (ChildRemoved) eventNode() {}
func (ChildMoved) eventNode()   {}

func (ValueEvent) Type() listener.EventType   { return listener.Value }
func (ChildAdded) Type() listener.EventType   { return listener.ChildAdded }
func (ChildChanged) Type() listener.EventType { return listener.ChildChanged }
func (ChildRemoved) Type() listener.EventType { return listener.ChildRemoved }
func (ChildMoved) Type() listener.EventType   { return listener.ChildMoved }

func (e ValueEvent) Snapshot() *query.Snapshot   { return e.Snap }
func (e ChildAdded) Snapshot() *query.Snapshot   { return e.Snap }
func (e ChildChanged) Snapshot() *query.Snapshot { return e.Snap }
func (e ChildRemoved) Snapshot() *query.Snapshot { return e.Snap }
func (e ChildMoved) Snapshot() *query.Snapshot   { return e.Snap }

// WatcherEvent is one listener's view of a write, before the dispatch table
// decides what, if anything, to deliver.
type WatcherEvent struct {
	ListenerID   listener.ID
	ListenerPath string
	EventType    listener.EventType
	Key          string
	Value        value.Value
	Prior        value.Value
}

// Dispatch is an event bound for a listener.
type Dispatch struct {
	Seq      int64
	Listener *listener.Listener
	Event    Event
}
