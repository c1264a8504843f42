// This file is part of Emulite.
//
// Emulite is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emulite is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emulite.  If not, see <https://www.gnu.org/licenses/>.

// Package ring implements a fixed capacity first-in-first-out container.
// Storage is allocated once at creation and entries are written at a
// wrapping cursor. Once the capacity is reached the oldest entry is
// overwritten by each new entry.
package ring

// Buffer is a fixed capacity FIFO ring of values of type T.
type Buffer[T any] struct {
	entries []T
	cursor  int
	count   int
}

// New is the preferred method of initialisation for the Buffer type. A
// capacity of less than one is treated as a capacity of one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		entries: make([]T, capacity),
	}
}

// Cap returns the fixed capacity of the ring.
func (r *Buffer[T]) Cap() int {
	return len(r.entries)
}

// Len returns the number of entries in the ring.
func (r *Buffer[T]) Len() int {
	return r.count
}

// Push adds an entry to the ring, evicting the oldest entry if the ring is
// full.
func (r *Buffer[T]) Push(v T) {
	r.entries[r.cursor] = v
	r.cursor++
	if r.cursor >= len(r.entries) {
		r.cursor = 0
	}
	if r.count < len(r.entries) {
		r.count++
	}
}

// index converts a logical index (0 is the oldest entry) to a slice index.
func (r *Buffer[T]) index(i int) int {
	start := r.cursor - r.count
	if start < 0 {
		start += len(r.entries)
	}
	return (start + i) % len(r.entries)
}

// Get returns the entry at logical index i, where 0 is the oldest entry.
// Returns false if i is out of range.
func (r *Buffer[T]) Get(i int) (T, bool) {
	if i < 0 || i >= r.count {
		var z T
		return z, false
	}
	return r.entries[r.index(i)], true
}

// Newest returns the most recently added entry. Returns false if the ring is
// empty.
func (r *Buffer[T]) Newest() (T, bool) {
	return r.Get(r.count - 1)
}

// Oldest returns the least recently added entry. Returns false if the ring is
// empty.
func (r *Buffer[T]) Oldest() (T, bool) {
	return r.Get(0)
}

// Slice returns a copy of the entries, oldest first.
func (r *Buffer[T]) Slice() []T {
	s := make([]T, r.count)
	for i := range s {
		s[i] = r.entries[r.index(i)]
	}
	return s
}

// Do calls f for every entry, oldest first. Iteration stops if f returns
// false.
func (r *Buffer[T]) Do(f func(T) bool) {
	for i := 0; i < r.count; i++ {
		if !f(r.entries[r.index(i)]) {
			return
		}
	}
}

// Truncate removes all entries newer than logical index i. Truncating to a
// negative index empties the ring.
func (r *Buffer[T]) Truncate(i int) {
	if i >= r.count-1 {
		return
	}
	if i < 0 {
		r.Clear()
		return
	}
	drop := r.count - (i + 1)
	r.cursor -= drop
	if r.cursor < 0 {
		r.cursor += len(r.entries)
	}
	r.count = i + 1
}

// Clear empties the ring without releasing its storage.
func (r *Buffer[T]) Clear() {
	var z T
	for i := range r.entries {
		r.entries[i] = z
	}
	r.cursor = 0
	r.count = 0
}
