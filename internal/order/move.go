// Package order keeps a displayed list of catalog entities, a drag gesture,
// and the backend's persisted order consistent.
package order

// Entity is anything that can sit in an ordered list view.
type Entity interface {
	EntityID() int
	EntityPosition() int
}

// Move relocates the entity identified by sourceID to the index targetID
// occupied before the call. Every other element keeps its relative order.
// If the ids are equal or either is missing, seq is returned unchanged.
// The input slice is never modified.
func Move[E Entity](seq []E, sourceID, targetID int) []E {
	if sourceID == targetID {
		return seq
	}

	from, to := -1, -1
	for i, e := range seq {
		switch e.EntityID() {
		case sourceID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return seq
	}

	moved := seq[from]
	out := make([]E, 0, len(seq))
	for i, e := range seq {
		if i == from {
			continue
		}
		if i == to && from > to {
			out = append(out, moved)
		}
		out = append(out, e)
		if i == to && from < to {
			out = append(out, moved)
		}
	}
	return out
}

// IDs returns the identifier sequence of seq.
func IDs[E Entity](seq []E) []int {
	ids := make([]int, len(seq))
	for i, e := range seq {
		ids[i] = e.EntityID()
	}
	return ids
}

func indexOf[E Entity](seq []E, id int) int {
	for i, e := range seq {
		if e.EntityID() == id {
			return i
		}
	}
	return -1
}
