package value

import (
	"cmp"
	"strings"
)

// rank orders value kinds the way the hosted service does when sorting by
// value: null, false, true, numbers, strings, objects.
func rank(v Value) int {
	switch val := v.(type) {
	case nil:
		return 0
	case Bool:
		if !val {
			return 1
		}
		return 2
	case Number:
		return 3
	case String:
		return 4
	default:
		return 5
	}
}

// Compare orders two values ascending: negative when a sorts before b.
// Values of different kinds are ordered by kind. Two objects compare equal.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case Number:
		return cmp.Compare(av, b.(Number))
	case String:
		return strings.Compare(string(av), string(b.(String)))
	}
	return 0
}
