package firemock

import (
	"fmt"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Reference addresses one location in the database. It is also a Query over
// that location with no ordering, filters or limit.
//
// Writes through a Reference complete after the simulated delay, like writes
// from a client waiting on the server; the write itself lands once the delay
// has passed.
type Reference struct {
	*Query
}

// Key is the last path segment; empty at the root.
func (r *Reference) Key() string {
	return keypath.Key(r.Path())
}

// Child returns a reference to path below r.
func (r *Reference) Child(path string) *Reference {
	return r.db.Ref(keypath.Join(r.Path(), path))
}

// Parent returns the reference one level up, or nil at the root.
func (r *Reference) Parent() *Reference {
	if keypath.IsRoot(r.Path()) {
		return nil
	}
	return r.db.Ref(keypath.Parent(r.Path()))
}

// Root returns a reference to the top of the database.
func (r *Reference) Root() *Reference {
	return r.db.Ref("")
}

// Set replaces the value at r. A nil v removes it.
func (r *Reference) Set(v any) error {
	val, err := value.From(v)
	if err != nil {
		return fmt.Errorf("set %s: %w", r.Path(), err)
	}
	r.db.wait()
	r.db.gateway.Set(r.Path(), val, false)
	return nil
}

// Update overwrites the named fields at r.
func (r *Reference) Update(fields map[string]any) error {
	partial, err := fieldsFrom(fields)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.Path(), err)
	}
	r.db.wait()
	r.db.gateway.Update(r.Path(), partial)
	return nil
}

// Remove deletes the value at r.
func (r *Reference) Remove() {
	r.db.wait()
	r.db.gateway.Remove(r.Path())
}

// Push stores v under a new key below r and returns a reference to it.
func (r *Reference) Push(v any) (*Reference, error) {
	val, err := value.From(v)
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", r.Path(), err)
	}
	r.db.wait()
	key := r.db.gateway.Push(r.Path(), val)
	return r.Child(key), nil
}
