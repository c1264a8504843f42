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

package rewind_test

import (
	"testing"

	"github.com/emulite/emulite/rewind"
	"github.com/emulite/emulite/test"
)

// runner is a pretend emulation. the state is the frame number.
type runner struct {
	frame   int
	plumbed []int
}

func (r *runner) Plumb(s *rewind.State) error {
	r.frame = s.Frame
	r.plumbed = append(r.plumbed, s.Frame)
	return nil
}

func (r *runner) CatchUpLoop(frame int) error {
	r.frame = frame
	return nil
}

func (r *runner) take() (*rewind.State, error) {
	return &rewind.State{Data: []byte{uint8(r.frame)}}, nil
}

func (r *runner) run(rw *rewind.Rewind, frames int) {
	for i := 0; i < frames; i++ {
		r.frame++
		_ = rw.Check(r.frame, r.take)
	}
}

func TestRewindEmpty(t *testing.T) {
	rw := rewind.NewRewind(&runner{}, 4, 10)
	_, err := rw.GotoFrame(10)
	test.ExpectFailure(t, err)
	test.ExpectFailure(t, rw.GotoLast())
	test.ExpectEquality(t, rw.GetFrames(), rewind.Frames{})
}

func TestRewindHistory(t *testing.T) {
	r := &runner{}
	rw := rewind.NewRewind(r, 4, 10)
	rw.Reset(&rewind.State{})

	r.run(rw, 25)
	test.ExpectEquality(t, rw.GetFrames(), rewind.Frames{Start: 0, End: 20, Current: 20, Entries: 3})

	// the earliest entry is forgotten when the history is full
	r.run(rw, 30)
	test.ExpectEquality(t, rw.GetFrames(), rewind.Frames{Start: 20, End: 50, Current: 50, Entries: 4})

	fn, err := rw.GotoFrame(35)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fn, 35)
	test.ExpectEquality(t, r.frame, 35)
	test.ExpectEquality(t, r.plumbed[len(r.plumbed)-1], 30)

	// clamped to the earliest and latest entries
	fn, err = rw.GotoFrame(5)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fn, 20)
	fn, err = rw.GotoFrame(500)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fn, 50)

	test.ExpectSuccess(t, rw.GotoLast())
	test.ExpectEquality(t, r.frame, 50)
}

func TestRewindWrapped(t *testing.T) {
	r := &runner{}
	rw := rewind.NewRewind(r, 5, 1)
	rw.Reset(&rewind.State{})

	// enough frames to wrap the circular array more than once
	r.run(rw, 13)
	test.ExpectEquality(t, rw.GetFrames(), rewind.Frames{Start: 9, End: 13, Current: 13, Entries: 5})

	for _, f := range []int{9, 10, 11, 12, 13} {
		_, err := rw.GotoFrame(f)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, r.plumbed[len(r.plumbed)-1], f)
	}
}

// recording after moving back forgets the entries after the current position.
func TestRewindSplice(t *testing.T) {
	r := &runner{}
	rw := rewind.NewRewind(r, 8, 10)
	rw.Reset(&rewind.State{})
	r.run(rw, 40)
	test.ExpectEquality(t, rw.GetFrames().End, 40)

	_, err := rw.GotoFrame(15)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, rw.GetFrames().Current, 10)

	r.run(rw, 5)
	test.ExpectEquality(t, rw.GetFrames(), rewind.Frames{Start: 0, End: 20, Current: 20, Entries: 3})
}
