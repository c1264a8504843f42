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

// Package rewind keeps a history of emulation states taken at frame
// boundaries. A state can be plumbed back into the emulation and the
// emulation run forward to any frame between two recorded states.
//
// The history is a circular array with a fixed number of entries. When the
// array is full the earliest entry is forgotten. Moving back in the history
// and then recording a new state forgets every entry after the current
// position.
package rewind

import (
	"fmt"

	"github.com/emulite/emulite/curated"
)

// Runner provides the rewind package the opportunity to run the emulation.
type Runner interface {
	// Plumb replaces the state of the emulation with the snapshot.
	Plumb(s *State) error

	// CatchUpLoop runs the emulation until the frame number is at least the
	// specified value.
	CatchUpLoop(frame int) error
}

// State is a single entry in the history.
type State struct {
	// frame number at the time of the snapshot
	Frame int

	// the encoded state. the rewind package never looks inside it
	Data []byte

	reset bool
}

func (s State) String() string {
	if s.reset {
		return fmt.Sprintf("%d (reset)", s.Frame)
	}
	return fmt.Sprintf("%d", s.Frame)
}

// the number of entries and the frequency if NewRewind() is given values of
// zero or less.
const (
	DefaultEntries   = 32
	DefaultFrequency = 30
)

// Rewind contains a history of machine states for the emulation.
type Rewind struct {
	runner Runner

	// how often a snapshot is taken, in frames
	frequency int

	// circular array of entries. the array is one larger than the number of
	// usable entries so that start and end are never equal unless the
	// history is empty
	entries []*State
	start   int
	end     int

	// the position of the entry most recently recorded or plumbed
	curr int
}

// NewRewind is the preferred method of initialisation for the Rewind type.
func NewRewind(runner Runner, entries int, frequency int) *Rewind {
	if entries <= 0 {
		entries = DefaultEntries
	}
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	return &Rewind{
		runner:    runner,
		frequency: frequency,
		entries:   make([]*State, entries+1),
	}
}

// Frequency returns the number of frames between snapshots.
func (r *Rewind) Frequency() int {
	return r.frequency
}

// Reset removes all entries and records the state of a freshly reset
// machine. This should be called whenever a new image is loaded or the
// platform is reset.
func (r *Rewind) Reset(s *State) {
	clear(r.entries)
	r.start = 0
	r.end = 0
	r.curr = len(r.entries) - 1
	s.reset = true
	r.append(s)
}

// Check should be called at every frame boundary. A new entry is recorded if
// the frame number is a multiple of the frequency. The take function is only
// called if an entry is to be recorded.
func (r *Rewind) Check(frame int, take func() (*State, error)) error {
	if r.empty() || frame%r.frequency != 0 {
		return nil
	}

	// the same frame can be seen twice after a plumb
	if r.entries[r.curr].Frame >= frame {
		return nil
	}

	s, err := take()
	if err != nil {
		return curated.Errorf("rewind: %v", err)
	}
	s.Frame = frame
	r.append(s)
	return nil
}

func (r *Rewind) empty() bool {
	return r.start == r.end
}

func (r *Rewind) next(i int) int {
	i++
	if i >= len(r.entries) {
		i = 0
	}
	return i
}

func (r *Rewind) prev(i int) int {
	i--
	if i < 0 {
		i += len(r.entries)
	}
	return i
}

func (r *Rewind) append(s *State) {
	// append at current position. anything after the current position is
	// forgotten
	r.curr = r.next(r.curr)
	r.entries[r.curr] = s
	r.end = r.next(r.curr)

	// push start index along
	if r.end == r.start {
		r.entries[r.start] = nil
		r.start = r.next(r.start)
	}
}

// Frames of the current state of the rewind system.
type Frames struct {
	Start   int
	End     int
	Current int
	Entries int
}

// GetFrames returns the range of frames in the history and the frame of the
// entry most recently recorded or plumbed.
func (r *Rewind) GetFrames() Frames {
	if r.empty() {
		return Frames{}
	}
	n := r.end - r.start
	if n < 0 {
		n += len(r.entries)
	}
	return Frames{
		Start:   r.entries[r.start].Frame,
		End:     r.entries[r.prev(r.end)].Frame,
		Current: r.entries[r.curr].Frame,
		Entries: n,
	}
}

// plumb the entry at idx and run the emulation on to the frame.
func (r *Rewind) plumb(idx int, frame int) error {
	r.curr = idx

	// take a copy of the state before plumbing. the machine must not be able
	// to change what we have stored
	s := *r.entries[idx]
	s.Data = append([]byte(nil), s.Data...)

	if err := r.runner.Plumb(&s); err != nil {
		return curated.Errorf("rewind: %v", err)
	}
	if frame > s.Frame {
		if err := r.runner.CatchUpLoop(frame); err != nil {
			return curated.Errorf("rewind: %v", err)
		}
	}
	return nil
}

// GotoLast sets the position to the last entry in the history.
func (r *Rewind) GotoLast() error {
	if r.empty() {
		return curated.Errorf("rewind: history is empty")
	}
	idx := r.prev(r.end)
	return r.plumb(idx, r.entries[idx].Frame)
}

// GotoFrame searches the history for the frame number and plumbs in the
// nearest earlier entry before running the emulation on to the frame. A frame
// outside the history is clamped to the earliest or latest entry. Returns the
// frame number reached.
func (r *Rewind) GotoFrame(frame int) (int, error) {
	if r.empty() {
		return 0, curated.Errorf("rewind: history is empty")
	}

	// initialise binary search
	s := r.start
	e := r.prev(r.end)

	fn := r.entries[s].Frame
	if frame <= fn {
		return fn, r.plumb(s, fn)
	}
	fn = r.entries[e].Frame
	if frame >= fn {
		return fn, r.plumb(e, fn)
	}

	// because entries is a circular array, there's an additional step to the
	// binary search. if start is greater than end then check which half of
	// the array to concentrate on
	best := s
	if s > e {
		if frame < r.entries[0].Frame {
			e = len(r.entries) - 1
		} else {
			s = 0
			best = 0
		}
	}

	// find the last entry with a frame number no greater than the request
	for s <= e {
		m := (s + e) / 2
		fn := r.entries[m].Frame
		if fn == frame {
			best = m
			break
		}
		if fn < frame {
			best = m
			s = m + 1
		} else {
			e = m - 1
		}
	}

	return frame, r.plumb(best, frame)
}
