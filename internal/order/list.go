package order

import (
	"cmp"
	"slices"
)

// List is the in-memory sequence backing one list view. It is not safe
// for concurrent use; View serializes access to it.
type List[E Entity] struct {
	items []E
}

func NewList[E Entity]() *List[E] {
	return &List[E]{items: []E{}}
}

// Load replaces the sequence with entities sorted ascending by position.
// Ties keep their fetch order. A repeated id keeps its first occurrence.
func (l *List[E]) Load(entities []E) {
	seen := make(map[int]bool, len(entities))
	items := make([]E, 0, len(entities))
	for _, e := range entities {
		if seen[e.EntityID()] {
			continue
		}
		seen[e.EntityID()] = true
		items = append(items, e)
	}
	slices.SortStableFunc(items, func(a, b E) int {
		return cmp.Compare(a.EntityPosition(), b.EntityPosition())
	})
	l.items = items
}

// Remove drops the entity with the given id, if present, and returns the
// resulting sequence.
func (l *List[E]) Remove(id int) []E {
	i := indexOf(l.items, id)
	if i < 0 {
		return l.Current()
	}
	l.items = slices.Delete(slices.Clone(l.items), i, i+1)
	return l.Current()
}

// Reorder applies Move to the sequence and returns the result.
func (l *List[E]) Reorder(sourceID, targetID int) []E {
	l.items = Move(l.items, sourceID, targetID)
	return l.Current()
}

func (l *List[E]) Current() []E {
	return slices.Clone(l.items)
}

func (l *List[E]) IDs() []int {
	return IDs(l.items)
}

func (l *List[E]) Len() int {
	return len(l.items)
}

func (l *List[E]) Contains(id int) bool {
	return indexOf(l.items, id) >= 0
}

func (l *List[E]) Get(id int) (E, bool) {
	var zero E
	i := indexOf(l.items, id)
	if i < 0 {
		return zero, false
	}
	return l.items[i], true
}
