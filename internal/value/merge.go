package value

// Merge combines base and over, with over winning. Objects are merged key by
// key down to depth levels; below that, or whenever over is not an object,
// over replaces base. A nil entry in over removes the key.
//
// Depth 1 is a shallow merge: top-level keys of over replace those of base.
// A base that is not an object counts as an empty one when over is an object.
// Neither input is modified.
func Merge(base, over Value, depth int) Value {
	oo, ook := over.(Object)
	if depth <= 0 || !ook {
		return Clone(over)
	}
	bo, _ := base.(Object)
	out := make(Object, len(bo)+len(oo))
	for k, v := range bo {
		out[k] = Clone(v)
	}
	for k, v := range oo {
		if v == nil {
			delete(out, k)
			continue
		}
		if existing, ok := out[k]; ok {
			out[k] = Merge(existing, v, depth-1)
			continue
		}
		out[k] = Clone(v)
	}
	return out
}
