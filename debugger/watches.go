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

package debugger

import (
	"fmt"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/ring"
)

// WatchFilter selects the kind of access a watchpoint matches.
type WatchFilter int

// List of valid WatchFilter values.
const (
	WatchBoth WatchFilter = iota
	WatchRead
	WatchWrite
)

func (f WatchFilter) String() string {
	switch f {
	case WatchRead:
		return "read"
	case WatchWrite:
		return "write"
	}
	return "read/write"
}

func (f WatchFilter) matches(k memory.AccessKind) bool {
	switch f {
	case WatchRead:
		return k == memory.AccessRead
	case WatchWrite:
		return k == memory.AccessWrite
	}
	return true
}

// Watchpoint pauses the emulation when a bus access touches any byte in the
// range [Address, Address+Size).
type Watchpoint struct {
	ID      int
	Address uint32
	Size    uint32
	Filter  WatchFilter
	Enabled bool

	// the number of accesses matched
	Hits int
}

func (w Watchpoint) String() string {
	s := fmt.Sprintf("#%d %08x", w.ID, w.Address)
	if w.Size > 1 {
		s = fmt.Sprintf("%s-%08x", s, uint64(w.Address)+uint64(w.Size)-1)
	}
	s = fmt.Sprintf("%s %s", s, w.Filter)
	if !w.Enabled {
		s = fmt.Sprintf("%s (disabled)", s)
	}
	return s
}

// Hit is a single access matched by a watchpoint.
type Hit struct {
	Watchpoint int
	Address    uint32
	Width      int
	Kind       memory.AccessKind
	Value      uint32

	// the program counter at the start of the instruction making the access
	PC uint32
}

func (h Hit) String() string {
	return fmt.Sprintf("#%d %s %08x (%#x) by %08x", h.Watchpoint, h.Kind, h.Address, h.Value, h.PC)
}

// the number of hits remembered by Hits().
const maxHits = 1024

type watches struct {
	watches []*Watchpoint
	nextID  int

	hits *ring.Buffer[Hit]

	// hits recorded since the start of the current step
	pending []Hit
}

func newWatches() *watches {
	return &watches{
		nextID: 1,
		hits:   ring.New[Hit](maxHits),
	}
}

func (wtc *watches) add(address uint32, size uint32, filter WatchFilter) (int, error) {
	if size == 0 {
		size = 1
	}
	if uint64(address)+uint64(size) > 1<<32 {
		return 0, curated.Errorf("debugger: %v: watchpoint extends beyond the address space", StateError)
	}
	switch filter {
	case WatchBoth, WatchRead, WatchWrite:
	default:
		return 0, curated.Errorf("debugger: %v: invalid watch filter (%d)", StateError, filter)
	}
	w := &Watchpoint{
		ID:      wtc.nextID,
		Address: address,
		Size:    size,
		Filter:  filter,
		Enabled: true,
	}
	wtc.nextID++
	wtc.watches = append(wtc.watches, w)
	return w.ID, nil
}

func (wtc *watches) find(id int) (int, bool) {
	for i, w := range wtc.watches {
		if w.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (wtc *watches) drop(id int) error {
	i, ok := wtc.find(id)
	if !ok {
		return curated.Errorf("debugger: %v: watchpoint #%d is not defined", StateError, id)
	}
	wtc.watches = append(wtc.watches[:i], wtc.watches[i+1:]...)
	return nil
}

func (wtc *watches) enable(id int, enabled bool) error {
	i, ok := wtc.find(id)
	if !ok {
		return curated.Errorf("debugger: %v: watchpoint #%d is not defined", StateError, id)
	}
	wtc.watches[i].Enabled = enabled
	return nil
}

func (wtc *watches) list() []Watchpoint {
	l := make([]Watchpoint, len(wtc.watches))
	for i, w := range wtc.watches {
		l[i] = *w
	}
	return l
}

// check the access against every enabled watchpoint. every match is
// recorded.
func (wtc *watches) check(acc memory.Access, pc uint32) {
	for _, w := range wtc.watches {
		if !w.Enabled || !w.Filter.matches(acc.Kind) || !acc.Overlaps(w.Address, w.Size) {
			continue
		}
		w.Hits++
		h := Hit{
			Watchpoint: w.ID,
			Address:    acc.Address,
			Width:      acc.Width,
			Kind:       acc.Kind,
			Value:      acc.Value,
			PC:         pc,
		}
		wtc.hits.Push(h)
		wtc.pending = append(wtc.pending, h)
	}
}

// take the hits recorded since the last call.
func (wtc *watches) take() []Hit {
	if len(wtc.pending) == 0 {
		return nil
	}
	h := wtc.pending
	wtc.pending = nil
	return h
}
