// Package dense provides a fixed-capacity dense set with swap removal and
// generational handles.
//
// Records live contiguously in slots [0, Len()). Removing a record moves the
// last live record into the vacated slot, so the backing storage never has
// gaps. Callers never hold slot numbers directly; they hold a Handle that is
// resolved through a sparse indirection table. Compaction rewrites one table
// entry, so every outstanding Handle keeps pointing at its own record.
//
// Set is not safe for concurrent use.
package dense

import "errors"

// Errors returned by Set.
var (
	// ErrFull is returned by Insert when every slot is occupied.
	ErrFull = errors.New("dense: set is full")

	// ErrStaleHandle is returned when a Handle does not refer to a live
	// record, either because it was removed or because the set was reset.
	ErrStaleHandle = errors.New("dense: stale handle")
)

// Handle identifies one record of a Set. The zero Handle is never valid.
type Handle struct {
	index uint32 // position in the sparse table, plus one
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.index == 0 }

// entry is one row of the sparse table.
type entry struct {
	slot int32 // dense slot, -1 while the entry is free
	gen  uint32
}

// Set is a fixed-capacity dense array of T addressed through Handles.
type Set[T any] struct {
	items  []T      // len == capacity; [0, n) live
	owners []uint32 // dense slot -> sparse index
	sparse []entry
	free   []uint32 // recycled sparse indices
	n      int
}

// New creates a set holding at most capacity records. The backing storage is
// allocated up front and never grows.
func New[T any](capacity int) *Set[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Set[T]{
		items:  make([]T, capacity),
		owners: make([]uint32, capacity),
		sparse: make([]entry, 0, capacity),
	}
}

// Len returns the number of live records.
func (s *Set[T]) Len() int { return s.n }

// Cap returns the fixed capacity.
func (s *Set[T]) Cap() int { return len(s.items) }

// Full reports whether Insert would fail.
func (s *Set[T]) Full() bool { return s.n == len(s.items) }

// Insert stores v at slot Len() and returns its handle and slot.
func (s *Set[T]) Insert(v T) (Handle, int, error) {
	if s.Full() {
		return Handle{}, -1, ErrFull
	}

	var idx uint32
	if k := len(s.free); k > 0 {
		idx = s.free[k-1]
		s.free = s.free[:k-1]
	} else {
		s.sparse = append(s.sparse, entry{slot: -1, gen: 1})
		idx = uint32(len(s.sparse) - 1)
	}

	slot := s.n
	s.items[slot] = v
	s.owners[slot] = idx
	s.sparse[idx].slot = int32(slot)
	s.n++

	return Handle{index: idx + 1, gen: s.sparse[idx].gen}, slot, nil
}

// Slot resolves h to its current dense slot.
func (s *Set[T]) Slot(h Handle) (int, error) {
	e, err := s.lookup(h)
	if err != nil {
		return -1, err
	}
	return int(e.slot), nil
}

// Put overwrites the record for h and returns its slot.
func (s *Set[T]) Put(h Handle, v T) (int, error) {
	e, err := s.lookup(h)
	if err != nil {
		return -1, err
	}
	s.items[e.slot] = v
	return int(e.slot), nil
}

// Remove deletes the record for h. If it was not the last live record, the
// last one is moved into its slot and its handle is redirected there. The
// vacated slot is reset to the zero value. moved reports the slot the last
// record came from, or -1 when nothing moved.
func (s *Set[T]) Remove(h Handle) (moved int, err error) {
	e, err := s.lookup(h)
	if err != nil {
		return -1, err
	}

	hole := int(e.slot)
	last := s.n - 1
	moved = -1
	if hole != last {
		s.items[hole] = s.items[last]
		owner := s.owners[last]
		s.owners[hole] = owner
		s.sparse[owner].slot = int32(hole)
		moved = last
	}

	var zero T
	s.items[last] = zero
	s.owners[last] = 0
	s.n--

	idx := h.index - 1
	s.sparse[idx].slot = -1
	s.sparse[idx].gen++
	s.free = append(s.free, idx)

	return moved, nil
}

// At returns the record stored at slot. Slots outside [0, Cap()) panic.
func (s *Set[T]) At(slot int) T { return s.items[slot] }

// Storage returns the whole backing array, live and free slots alike.
// The returned slice aliases the set.
func (s *Set[T]) Storage() []T { return s.items }

// Reset removes every record and invalidates every outstanding handle.
func (s *Set[T]) Reset() {
	clear(s.items)
	clear(s.owners)
	s.free = s.free[:0]
	for i := range s.sparse {
		if s.sparse[i].slot >= 0 {
			s.sparse[i].slot = -1
		}
		s.sparse[i].gen++
		s.free = append(s.free, uint32(i))
	}
	s.n = 0
}

func (s *Set[T]) lookup(h Handle) (entry, error) {
	if h.index == 0 || int(h.index) > len(s.sparse) {
		return entry{}, ErrStaleHandle
	}
	e := s.sparse[h.index-1]
	if e.gen != h.gen || e.slot < 0 {
		return entry{}, ErrStaleHandle
	}
	return e, nil
}
