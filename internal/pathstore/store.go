package pathstore

import (
	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Store is the in-memory tree.
type Store struct {
	root value.Value
}

// New creates an empty store. The root is an empty object.
func New() *Store {
	return &Store{root: value.Object{}}
}

// Get returns a copy of the value at path and whether anything is stored there.
// The root always exists.
func (s *Store) Get(path string) (value.Value, bool) {
	node, ok := s.lookup(keypath.Segments(path))
	if !ok {
		return nil, false
	}
	return value.Clone(node), true
}

// Exists reports whether a value is stored at path.
func (s *Store) Exists(path string) bool {
	_, ok := s.lookup(keypath.Segments(path))
	return ok
}

func (s *Store) lookup(segs []string) (value.Value, bool) {
	node := s.root
	for _, seg := range segs {
		obj, ok := node.(value.Object)
		if !ok {
			return nil, false
		}
		node, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return node, node != nil
}

// Set stores a copy of v at path, creating intermediate objects. A scalar
// sitting where an intermediate object is needed is replaced. A nil v deletes.
func (s *Store) Set(path string, v value.Value) {
	if v == nil {
		s.Delete(path)
		return
	}
	segs := keypath.Segments(path)
	if len(segs) == 0 {
		s.root = value.Clone(v)
		return
	}
	parent := s.ensureObject(segs[:len(segs)-1])
	parent[segs[len(segs)-1]] = value.Clone(v)
}

// ensureObject walks segs from the root, replacing anything that is not an
// object, and returns the object at the end.
func (s *Store) ensureObject(segs []string) value.Object {
	root, ok := s.root.(value.Object)
	if !ok {
		root = value.Object{}
		s.root = root
	}
	node := root
	for _, seg := range segs {
		child, ok := node[seg].(value.Object)
		if !ok {
			child = value.Object{}
			node[seg] = child
		}
		node = child
	}
	return node
}

// Delete removes the key at path from its parent object. Deleting the root
// empties the store. When the parent is not an object nothing is stored at
// path and Delete does nothing.
func (s *Store) Delete(path string) {
	segs := keypath.Segments(path)
	if len(segs) == 0 {
		s.Clear()
		return
	}
	parent, ok := s.lookup(segs[:len(segs)-1])
	if !ok {
		return
	}
	if obj, ok := parent.(value.Object); ok {
		delete(obj, segs[len(segs)-1])
	}
}

// Clear empties the store.
func (s *Store) Clear() {
	s.root = value.Object{}
}

// Copy returns an independent deep copy of the store.
func (s *Store) Copy() *Store {
	return &Store{root: value.Clone(s.root)}
}
