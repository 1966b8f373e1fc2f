package listener

import (
	"errors"
	"fmt"
)

// EventType names what a listener wants to hear about.
type EventType string

const (
	Value        EventType = "value"
	ChildAdded   EventType = "child_added"
	ChildChanged EventType = "child_changed"
	ChildRemoved EventType = "child_removed"
	ChildMoved   EventType = "child_moved"
)

// EventTypes lists every event type in dispatch order.
var EventTypes = []EventType{Value, ChildAdded, ChildChanged, ChildRemoved, ChildMoved}

// ErrUnknownEventType is returned for names outside EventTypes.
var ErrUnknownEventType = errors.New("unknown event type")

// ParseEventType validates an event type name.
func ParseEventType(s string) (EventType, error) {
	for _, et := range EventTypes {
		if string(et) == s {
			return et, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownEventType)
}

// IsChild reports whether e is one of the child_* types.
func (e EventType) IsChild() bool {
	return e == ChildAdded || e == ChildChanged || e == ChildRemoved || e == ChildMoved
}
