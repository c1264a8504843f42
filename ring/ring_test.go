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

package ring_test

import (
	"testing"

	"github.com/emulite/emulite/ring"
	"github.com/emulite/emulite/test"
)

func TestRing(t *testing.T) {
	r := ring.New[int](3)
	test.ExpectEquality(t, r.Cap(), 3)
	test.ExpectEquality(t, r.Len(), 0)

	_, ok := r.Newest()
	test.ExpectFailure(t, ok)

	r.Push(1)
	r.Push(2)
	test.ExpectEquality(t, r.Len(), 2)
	v, _ := r.Oldest()
	test.ExpectEquality(t, v, 1)
	v, _ = r.Newest()
	test.ExpectEquality(t, v, 2)

	// fill and wrap. oldest entries are evicted first
	r.Push(3)
	r.Push(4)
	r.Push(5)
	test.ExpectEquality(t, r.Len(), 3)

	s := r.Slice()
	test.DemandEquality(t, len(s), 3)
	test.ExpectEquality(t, s[0], 3)
	test.ExpectEquality(t, s[1], 4)
	test.ExpectEquality(t, s[2], 5)

	v, _ = r.Newest()
	test.ExpectEquality(t, v, 5)

	_, ok = r.Get(3)
	test.ExpectFailure(t, ok)

	n := 0
	r.Do(func(v int) bool {
		n += v
		return true
	})
	test.ExpectEquality(t, n, 12)

	r.Clear()
	test.ExpectEquality(t, r.Len(), 0)
	r.Push(6)
	v, _ = r.Oldest()
	test.ExpectEquality(t, v, 6)
}

func TestTruncate(t *testing.T) {
	r := ring.New[string](4)
	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		r.Push(s)
	}

	// ring contains c d e f
	r.Truncate(1)
	test.ExpectEquality(t, r.Len(), 2)
	v, _ := r.Newest()
	test.ExpectEquality(t, v, "d")

	// pushing after a truncation continues from the truncation point
	r.Push("g")
	s := r.Slice()
	test.DemandEquality(t, len(s), 3)
	test.ExpectEquality(t, s[0], "c")
	test.ExpectEquality(t, s[2], "g")

	r.Truncate(-1)
	test.ExpectEquality(t, r.Len(), 0)
}

func TestMinimumCapacity(t *testing.T) {
	r := ring.New[int](0)
	test.ExpectEquality(t, r.Cap(), 1)
	r.Push(1)
	r.Push(2)
	v, _ := r.Oldest()
	test.ExpectEquality(t, v, 2)
}
