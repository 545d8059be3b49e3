package imgio

// NormalizeAxisOrder applies the dimension-order heuristic used when loading
// multi-dimensional scientific images: if the leading axis is smaller than the
// trailing axis and the trailing axis is not a 3- or 4-element channel axis,
// the leading axis is assumed to be non-spatial (channel or stack) and moved
// last. This is a best-effort guess, not a guarantee.
//
// The returned permutation maps output axis positions to input axis positions,
// so callers can reorder their data the same way.
func NormalizeAxisOrder(shape []int) (reordered []int, perm []int) {
	perm = make([]int, len(shape))
	for i := range perm {
		perm[i] = i
	}

	if len(shape) < 3 {
		reordered = append([]int(nil), shape...)
		return reordered, perm
	}

	leading := shape[0]
	trailing := shape[len(shape)-1]
	if leading < trailing && trailing != 3 && trailing != 4 {
		perm = append(perm[1:], 0)
	}

	reordered = make([]int, len(shape))
	for i, src := range perm {
		reordered[i] = shape[src]
	}
	return reordered, perm
}
