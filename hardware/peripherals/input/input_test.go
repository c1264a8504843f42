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

package input_test

import (
	"testing"

	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

func TestButtons(t *testing.T) {
	b := input.A | input.Start
	test.ExpectEquality(t, b.String(), "A+Start")
	test.ExpectEquality(t, input.Button(0).String(), "none")

	v, ok := input.ParseButton("select")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, input.Select)
	_, ok = input.ParseButton("turbo")
	test.ExpectFailure(t, ok)

	s := input.Snapshot{Buttons: b}
	test.ExpectSuccess(t, s.Pressed(input.A))
	test.ExpectSuccess(t, s.Pressed(input.A|input.Start))
	test.ExpectFailure(t, s.Pressed(input.A|input.B))
}

func TestShiftPort(t *testing.T) {
	p := input.NewShiftPort(input.NESOrder)
	p.Set(input.Snapshot{Buttons: input.A | input.Start | input.Right})

	p.Strobe(true)
	test.ExpectEquality(t, p.Read(), uint8(1))
	test.ExpectEquality(t, p.Read(), uint8(1))
	p.Strobe(false)

	var bits []uint8
	for i := 0; i < 10; i++ {
		bits = append(bits, p.Read())
	}
	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 1, 1, 1}
	for i := range expected {
		test.ExpectEquality(t, bits[i], expected[i], i)
	}

	// buttons changed after the strobe has fallen are not seen until the next
	// strobe
	p.Strobe(true)
	p.Strobe(false)
	p.Set(input.Snapshot{Buttons: input.B})
	test.ExpectEquality(t, p.Read(), uint8(1))
	test.ExpectEquality(t, p.Read(), uint8(0))
}

func TestShiftPortState(t *testing.T) {
	p := input.NewShiftPort(input.NESOrder)
	p.Set(input.Snapshot{Buttons: input.B})
	p.Strobe(true)
	p.Strobe(false)
	test.ExpectEquality(t, p.Read(), uint8(0))

	enc := savestate.NewEncoder()
	p.SaveState(enc)
	test.ExpectEquality(t, p.Read(), uint8(1))

	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.RestoreState(dec))
	test.ExpectEquality(t, p.Peek(), uint8(1))
	test.ExpectEquality(t, p.Read(), uint8(1))
	test.ExpectEquality(t, p.Read(), uint8(0))
}

func TestSNESWord(t *testing.T) {
	p := input.NewShiftPort(input.SNESOrder)
	p.Set(input.Snapshot{Buttons: input.B | input.R})
	test.ExpectEquality(t, p.Word(), uint16(0x8010))

	p.Strobe(true)
	p.Strobe(false)
	for i := 0; i < 11; i++ {
		p.Read()
	}
	test.ExpectEquality(t, p.Read(), uint8(1))
	for i := 0; i < 4; i++ {
		test.ExpectEquality(t, p.Read(), uint8(0))
	}
	test.ExpectEquality(t, p.Read(), uint8(1))
}

func TestParallelPort(t *testing.T) {
	p := input.NewParallelPort(map[input.Button]uint{
		input.Right: 7,
		input.Left:  6,
		input.Down:  5,
		input.Up:    4,
	}, true)
	test.ExpectEquality(t, p.Read()&0xff, uint32(0xff))

	p.Set(input.Snapshot{Buttons: input.Up | input.Right})
	test.ExpectEquality(t, p.Read()&0xff, uint32(0x6f))

	p.Reset()
	test.ExpectEquality(t, p.Snapshot().Buttons, input.Button(0))

	q := input.NewParallelPort(map[input.Button]uint{input.A: 0}, false)
	q.Set(input.Snapshot{Buttons: input.A})
	test.ExpectEquality(t, q.Read(), uint32(1))
}
