package firemock

import (
	"github.com/forest-fire/firemock-sub000/internal/notify"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Event describes one delivery to a listener, as seen by an observer
// registered with WithEventObserver.
type Event struct {
	// Seq orders deliveries within a session, starting at 1.
	Seq int64

	Listener ID
	Path     string
	Type     EventType

	// Key is the snapshot key: the changed child for child events, the
	// last segment of Path for value events.
	Key string

	// Value is the snapshot value as plain Go data.
	Value any

	// Prior is the value before the write, for value and child_changed
	// events.
	Prior any
}

func eventFrom(d notify.Dispatch) Event {
	snap := d.Event.Snapshot()
	ev := Event{
		Seq:      d.Seq,
		Listener: d.Listener.ID,
		Path:     d.Listener.Path(),
		Type:     d.Event.Type(),
		Key:      snap.Key(),
		Value:    snap.Export(),
	}
	switch e := d.Event.(type) {
	case notify.ValueEvent:
		ev.Prior = value.Export(e.Prior)
	case notify.ChildChanged:
		ev.Prior = value.Export(e.Prior)
	}
	return ev
}
