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

package performance_test

import (
	"strings"
	"testing"
	"time"

	"github.com/emulite/emulite/emulation"
	"github.com/emulite/emulite/performance"
	"github.com/emulite/emulite/test"
)

// JMP $8000
var jumpLoop = []uint8{0x4c, 0x00, 0x80}

func TestCalcFPS(t *testing.T) {
	fps, accuracy := performance.CalcFPS(60, 120, 4)
	test.ExpectApproximate(t, fps, 30.0, 0.001)
	test.ExpectApproximate(t, accuracy, 50.0, 0.001)

	fps, accuracy = performance.CalcFPS(60, 120, 0)
	test.ExpectEquality(t, fps, 0.0)
	test.ExpectEquality(t, accuracy, 0.0)
}

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("cpu, trace")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileTrace)

	p, err = performance.ParseProfileString("none")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileNone)

	_, err = performance.ParseProfileString("gpu")
	test.ExpectFailure(t, err)
}

func TestMeasure(t *testing.T) {
	emu, err := emulation.NewEmulator(nil)
	test.DemandSuccess(t, err)
	defer func() {
		_ = emu.Stop()
	}()
	test.DemandSuccess(t, emu.Load("generic", jumpLoop))

	r, err := performance.Measure(emu, 50*time.Millisecond)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, r.Frames, 0)
	test.ExpectEquality(t, len(r.FrameTimes), r.Frames)
	test.ExpectEquality(t, r.Refresh > 0, true)

	w := &strings.Builder{}
	test.DemandSuccess(t, r.Histogram(w))
	test.ExpectEquality(t, strings.Contains(w.String(), "frame time"), true)

	_, err = performance.Measure(emu, 0)
	test.ExpectFailure(t, err)
}

func TestCheck(t *testing.T) {
	w := &strings.Builder{}
	err := performance.Check(w, performance.ProfileNone, "generic", jumpLoop, 20*time.Millisecond)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, strings.Contains(w.String(), "fps"), true)

	err = performance.Check(w, performance.ProfileNone, "amiga", jumpLoop, 20*time.Millisecond)
	test.ExpectFailure(t, err)
}
